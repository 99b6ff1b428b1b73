package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExportKey(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 5, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "exports/slot-1/20261017T073005Z.csv", ExportKey("slot-1", at))
}

func TestPresignExpire(t *testing.T) {
	assert.Equal(t, 15*time.Minute, presignExpire(0))
	assert.Equal(t, 5*time.Minute, presignExpire(5))
}
