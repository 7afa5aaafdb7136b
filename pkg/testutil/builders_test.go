package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowbridge/pkg/models"
)

func TestCreateTestNodeDefaultsAndOverrides(t *testing.T) {
	node := CreateTestNode()
	assert.NotEmpty(t, node.ID)
	assert.True(t, node.IsTriggerCandidate())

	plain := CreateTestNode(WithNodeType("@vendor.chatTrigger"), WithNodeName("Chat Trigger"), WithoutWebhook())
	assert.Equal(t, "@vendor.chatTrigger", plain.Type)
	assert.Equal(t, "Chat Trigger", plain.Name)
	assert.False(t, plain.IsTriggerCandidate())
}

func TestCreateTestExecutionDefaultsAndOverrides(t *testing.T) {
	execution := CreateTestExecution()

	// Builders produce ids in the execution's flexible id type.
	assert.IsType(t, models.FlexibleID(""), execution.ID)
	assert.NotEmpty(t, string(execution.ID))

	duration, ok := execution.Duration()
	require.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, duration)

	running := CreateTestExecution(WithStatus(models.ExecutionStatusRunning))
	assert.True(t, running.IsRunning())
	assert.Nil(t, running.StoppedAt)

	shifted := CreateTestExecution(WithStartedAt(time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)))
	shiftedDuration, ok := shifted.Duration()
	require.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, shiftedDuration)
}
