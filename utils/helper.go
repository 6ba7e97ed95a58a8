package utils

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
)

func GenerateUniqueFilename() string {

	timestamp := time.Now().UnixNano()

	random := rand.Intn(1000)

	uniqueFilename := fmt.Sprintf("%d_%d", timestamp, random)

	return uniqueFilename
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

// returns slice removing duplicate elements
func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// ImportLock serializes spreadsheet imports for one project so two concurrent
// uploads cannot interleave their reconciliation passes. Returns a release func.
func ImportLock(ctx context.Context, projectKey string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Redis is optional in development; fall back to no locking.
		return func() {}, nil
	}
	lockKey := "importLock:" + projectKey
	lock, err := locker.Obtain(ctx, lockKey, 60*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain import lock", projectKey, err)
		return nil, errors.New("another import is in progress for this project")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining import lock", projectKey, err)
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}
