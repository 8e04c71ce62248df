package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from  models.ListingStatus
		event ListingEvent
		to    models.ListingStatus
		noop  bool
		ok    bool
	}{
		{models.StatusPending, EventApprove, models.StatusApproved, false, true},
		{models.StatusApproved, EventApprove, models.StatusApproved, true, true},
		{models.StatusRejected, EventApprove, "", false, false},
		{models.StatusPending, EventReject, models.StatusRejected, false, true},
		{models.StatusRejected, EventReject, models.StatusRejected, true, true},
		{models.StatusApproved, EventReject, "", false, false},
		{models.StatusPending, EventEdit, models.StatusPending, true, true},
		{models.StatusApproved, EventEdit, models.StatusApproved, true, true},
		{models.StatusRejected, EventEdit, "", false, false},
		{models.StatusRejected, EventDelete, models.StatusRejected, true, true},
	}

	for _, tc := range cases {
		to, noop, err := Transition(tc.from, tc.event)
		if !tc.ok {
			require.Error(t, err, "%s from %s", tc.event, tc.from)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition.Code))
			continue
		}
		require.NoError(t, err, "%s from %s", tc.event, tc.from)
		assert.Equal(t, tc.to, to)
		assert.Equal(t, tc.noop, noop)
	}
}

func TestRejectedIsTerminal(t *testing.T) {
	for _, event := range []ListingEvent{EventApprove, EventEdit} {
		_, _, err := Transition(models.StatusRejected, event)
		assert.Error(t, err, event)
	}
}

func TestChangingSources(t *testing.T) {
	assert.Equal(t, []models.ListingStatus{models.StatusPending}, changingSources(EventApprove))
	assert.Equal(t, []models.ListingStatus{models.StatusPending}, changingSources(EventReject))
	assert.Empty(t, changingSources(EventEdit))
}

func TestAuthorizeGuards(t *testing.T) {
	owner := models.Actor{ID: "u1"}
	other := models.Actor{ID: "u2"}
	admin := models.Actor{ID: "a1", Admin: true}
	listing := &models.Listing{ID: "l1", UserID: "u1"}

	assert.True(t, appErrors.HasCode(authorize(models.Anonymous, EventCreate, nil), appErrors.ErrUnauthorized.Code))
	assert.NoError(t, authorize(owner, EventCreate, nil))

	assert.True(t, appErrors.HasCode(authorize(owner, EventApprove, listing), appErrors.ErrForbidden.Code))
	assert.True(t, appErrors.HasCode(authorize(other, EventReject, listing), appErrors.ErrForbidden.Code))
	assert.True(t, appErrors.HasCode(authorize(models.Anonymous, EventApprove, listing), appErrors.ErrUnauthorized.Code))
	assert.NoError(t, authorize(admin, EventReject, listing))

	assert.NoError(t, authorize(owner, EventEdit, listing))
	assert.NoError(t, authorize(admin, EventDelete, listing))
	assert.True(t, appErrors.HasCode(authorize(other, EventDelete, listing), appErrors.ErrForbidden.Code))
	assert.True(t, appErrors.HasCode(authorize(models.Anonymous, EventEdit, listing), appErrors.ErrUnauthorized.Code))
}
