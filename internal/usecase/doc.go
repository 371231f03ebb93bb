// Package usecase contains application business logic services.
package usecase
