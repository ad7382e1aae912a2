package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobEnvelopeRoundTrip(t *testing.T) {
	advisorID := uuid.New()
	registrationID := uuid.New()
	payload := EmailPayload{
		EmailType:      "roster_summary",
		AdvisorID:      &advisorID,
		RegistrationID: &registrationID,
		RecipientEmail: "staff@school.edu",
		Subject:        "FLC Registration Update",
		BodyHTML:       "<p>Total participants: 2.</p>",
		AttachmentName: "participants.csv",
		AttachmentCSV:  "First Name,Last Name\nJo,Lee\n",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeEmail,
		Payload:   body,
		Attempt:   1,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	raw, err := json.Marshal(job)
	require.NoError(t, err)

	var got Job
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, JobTypeEmail, got.Type)
	assert.Equal(t, 1, got.Attempt)
	assert.True(t, job.CreatedAt.Equal(got.CreatedAt))

	var gotPayload EmailPayload
	require.NoError(t, json.Unmarshal(got.Payload, &gotPayload))
	assert.Equal(t, payload, gotPayload)
}

func TestRetryQueuePromotesToDLQ(t *testing.T) {
	// Attempts below the cap go back to the work queue; the attempt that
	// exhausts the cap lands in the DLQ, never back in rotation.
	assert.Equal(t, QueueEmails, retryQueue(1))
	assert.Equal(t, QueueEmails, retryQueue(MaxRetries-1))
	assert.Equal(t, QueueDLQ, retryQueue(MaxRetries))
	assert.Equal(t, QueueDLQ, retryQueue(MaxRetries+1))
}
