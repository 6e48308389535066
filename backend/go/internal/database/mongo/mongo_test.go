package mongo

import (
	"context"
	"testing"

	"moihub_chatbot/backend/go/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestConnect_InvalidURI(t *testing.T) {
	_, err := Connect(context.Background(), &config.MongoConfig{Address: "not-a-mongo-uri"})
	assert.Error(t, err)
}

func TestClose_NilClient(t *testing.T) {
	assert.NoError(t, Close(context.Background(), nil))
}
