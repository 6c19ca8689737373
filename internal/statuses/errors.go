package statuses

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

var (
	ErrRepositoryRequired   = errors.New("statuses: repository required")
	ErrOrganizationRequired = errors.New("statuses: organization id is required")
	ErrNameRequired         = errors.New("statuses: name is required")
	ErrColorRequired        = errors.New("statuses: color is required")
	ErrInvalidOrderIndex    = errors.New("statuses: order index must not be negative")
	ErrNotConfigured        = errors.New("statuses: vocabulary not configured")
	ErrUnknownStatus        = errors.New("statuses: unknown status")
	ErrDuplicateName        = errors.New("statuses: active status name already exists")
	ErrImmutableName        = errors.New("statuses: status name cannot be changed")
	ErrIncompleteSet        = errors.New("statuses: reorder must list every active status exactly once")
	ErrDefinitionNotFound   = errors.New("statuses: status definition not found")
)

const (
	codeInvalidInput    = "STATUS_INVALID_INPUT"
	codeNotConfigured   = "STATUS_NOT_CONFIGURED"
	codeUnknownStatus   = "STATUS_UNKNOWN"
	codeDuplicateName   = "STATUS_DUPLICATE_NAME"
	codeImmutableName   = "STATUS_IMMUTABLE_NAME"
	codeIncompleteSet   = "STATUS_INCOMPLETE_SET"
	codeDefinitionGone  = "STATUS_DEFINITION_NOT_FOUND"
	codeDefaultsInvalid = "STATUS_DEFAULTS_INVALID"
)

// classify attaches a validation category and text code to the service
// sentinels. Unknown errors pass through untouched.
func classify(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	code := ""
	switch {
	case errors.Is(err, ErrNotConfigured):
		code = codeNotConfigured
	case errors.Is(err, ErrUnknownStatus):
		code = codeUnknownStatus
	case errors.Is(err, ErrDuplicateName):
		code = codeDuplicateName
	case errors.Is(err, ErrImmutableName):
		code = codeImmutableName
	case errors.Is(err, ErrIncompleteSet):
		code = codeIncompleteSet
	case errors.Is(err, ErrDefinitionNotFound):
		code = codeDefinitionGone
	case errors.Is(err, ErrDefaultsInvalid):
		code = codeDefaultsInvalid
	case errors.Is(err, ErrOrganizationRequired),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrColorRequired),
		errors.Is(err, ErrInvalidOrderIndex):
		code = codeInvalidInput
	default:
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).WithTextCode(code)
}

func invalidInput(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "status definition input invalid").
		WithTextCode(codeInvalidInput)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func translateRepoError(err error, fallback error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fallback
	}
	return err
}
