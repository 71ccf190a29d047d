package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrInviteNotFound       = errors.New("invite not found")
	ErrRequestNotFound      = errors.New("request not found")

	ErrUnauthenticated     = errors.New("login required")
	ErrForbidden           = errors.New("not allowed")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email is already in use")
	ErrUsernameTaken       = errors.New("username is already in use")
	ErrSlugTaken           = errors.New("slug is already in use")
	ErrLastAdmin           = errors.New("cannot remove the last admin")
	ErrNotANetwork         = errors.New("organization is not a network")
	ErrNetworkHasMembers   = errors.New("network still has members")
	ErrAlreadyMember       = errors.New("already a member")
	ErrNotAMember          = errors.New("not a member")
	ErrInviteNotPending    = errors.New("invite is not pending")
	ErrRequestNotPending   = errors.New("request is not pending")
	ErrSelfReference       = errors.New("an organization cannot join itself")
	ErrParticipationClosed = errors.New("participation is closed")
	ErrAlreadyReported     = errors.New("already reported")
	ErrSoleAdministrator   = errors.New("profile is the only admin of other entities")
)

// ValidationError carries messages per form field
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError returns an error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// SoleAdministratorError lists the entities blocking an account deletion
type SoleAdministratorError struct {
	Entities []domain.EntityRef
}

func (e *SoleAdministratorError) Error() string {
	names := make([]string, len(e.Entities))
	for i, ref := range e.Entities {
		names[i] = ref.Type + " " + ref.Name
	}
	return ErrSoleAdministrator.Error() + ": " + strings.Join(names, ", ")
}

func (e *SoleAdministratorError) Is(target error) bool {
	return target == ErrSoleAdministrator
}

// notFound maps repository.ErrNotFound to the entity specific error
func notFound(err, entityErr error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return entityErr
	}
	return err
}
