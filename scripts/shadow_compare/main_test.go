package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnwrapEnvelope(t *testing.T) {
	assert.JSONEq(t, `[1,2]`, string(unwrapEnvelope([]byte(`{"data":[1,2],"meta":{"cache_hit":true}}`))))
	assert.Equal(t, `{"error":{"code":"NOT_FOUND"}}`, string(unwrapEnvelope([]byte(`{"error":{"code":"NOT_FOUND"}}`))))
	assert.Equal(t, `[3]`, string(unwrapEnvelope([]byte(`[3]`))))
}

func TestBodiesEqualIgnoresKeysAndNumberFormat(t *testing.T) {
	a := []byte(`[{"date":"2025-01-08","count":2.0,"generated_at":"x"}]`)
	b := []byte(`[{"date":"2025-01-08","count":2,"generated_at":"y"}]`)
	assert.False(t, bodiesEqual(a, b, nil))
	assert.True(t, bodiesEqual(a, b, []string{"generated_at"}))
}
