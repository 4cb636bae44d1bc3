package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound       = errors.New("resource not found") // General not found
	ErrStoryNotFound  = errors.New("story not found")
	ErrBranchNotFound = errors.New("branch not found")
	ErrPersistence    = errors.New("failed to persist story")

	// Authentication Errors
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Authoring Errors
	ErrInvalidInput            = errors.New("invalid input data")
	ErrEmptyChoiceText         = errors.New("choice text must not be empty")
	ErrInvalidChoice           = errors.New("invalid choice index")
	ErrDuplicateBranchID       = errors.New("branch with this id already exists")
	ErrInvalidStatusTransition = errors.New("story status transition is not allowed")

	// Reading Errors
	ErrEmptyStory           = errors.New("story has no branches")
	ErrNavigationFinished   = errors.New("reading session has already finished")
	ErrNavigationNotStarted = errors.New("reading session has not been started")

	// External providers
	ErrImageStorageDisabled = errors.New("image storage is not configured")
	ErrIllustrationDisabled = errors.New("illustration generator is not configured")
)

// Error codes returned in ErrorResponse.Code
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeNotImplemented   = "NOT_CONFIGURED"
	ErrCodeInvalidChoice    = "INVALID_CHOICE"
	ErrCodeEmptyStory       = "EMPTY_STORY"
	ErrCodeStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeRateLimited      = "RATE_LIMITED"
)
