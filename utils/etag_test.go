package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateETag(t *testing.T) {
	id := primitive.NewObjectID()
	now := time.Now()

	a := GenerateETag(id, now)
	require.Equal(t, a, GenerateETag(id, now))
	require.True(t, len(a) > 2 && a[0] == '"' && a[len(a)-1] == '"')

	// any change to id or timestamp changes the tag
	require.NotEqual(t, a, GenerateETag(primitive.NewObjectID(), now))
	require.NotEqual(t, a, GenerateETag(id, now.Add(time.Millisecond)))
}
