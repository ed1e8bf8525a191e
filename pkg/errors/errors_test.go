package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSentinelMatching verifies each typed error matches its sentinel via
// errors.Is, including through wrapping.
func TestSentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NewNotFoundError("bill", "ocd-bill/1"), ErrNotFound},
		{"missing identity field", NewMissingIdentityFieldError("person", "name"), ErrMissingIdentityField},
		{"unresolved reference", NewUnresolvedReferenceError("membership", "person-1"), ErrUnresolvedReference},
		{"ambiguous match", NewAmbiguousMatchError("bill", "identifier=HB 1", 2), ErrAmbiguousMatch},
		{"no memberships", NewNoMembershipsError([]string{"p1"}), ErrNoMemberships},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Is(tt.err, tt.sentinel))
			assert.True(t, Is(fmt.Errorf("stage failed: %w", tt.err), tt.sentinel))
			assert.False(t, Is(tt.err, ErrReadOnly))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("person", "x")))
	assert.False(t, IsNotFound(New("other")))
	assert.True(t, IsMissingIdentityField(NewMissingIdentityFieldError("bill", "identifier")))
	assert.True(t, IsUnresolvedReference(NewUnresolvedReferenceError("vote_event", "bill-9")))
}

func TestNoMembershipsErrorListsAllOffenders(t *testing.T) {
	err := NewNoMembershipsError([]string{"person-1", "person-3", "person-7"})
	assert.Equal(t, "no memberships for 3 people: person-1, person-3, person-7", err.Error())
}

func TestAmbiguousMatchErrorMessage(t *testing.T) {
	err := NewAmbiguousMatchError("organization", "jurisdiction=jid;name=House", 2)
	assert.Contains(t, err.Error(), "2 organization records")
	assert.Contains(t, err.Error(), "jurisdiction=jid;name=House")
}

func TestWrapIO(t *testing.T) {
	assert.NoError(t, WrapIO("read", "file.yaml", nil))

	inner := New("permission denied")
	err := WrapIO("read", "file.yaml", inner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file.yaml")
	assert.True(t, Is(err, inner))
}

func TestWrapParse(t *testing.T) {
	assert.NoError(t, WrapParse("yaml", "batch.yaml", nil))

	inner := New("bad indent")
	err := WrapParse("yaml", "batch.yaml", inner)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, As(err, &parseErr))
	assert.Equal(t, "yaml", parseErr.Format)
	assert.True(t, Is(err, inner))
}
