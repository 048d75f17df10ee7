// Package models contains the GORM persistence models and their conversions
// to and from domain entities. Partition-scoped models carry no TableName;
// the repositories qualify every statement with the owning tenant's schema.
package models
