// Package models contains the GORM persistence models. Each model maps one
// domain entity to its table and knows how to convert in both directions;
// domain entities never carry GORM tags themselves.
package models
