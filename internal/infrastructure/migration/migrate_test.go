package migration

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&sql.DB{}, "oracle", fstest.MapFS{}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported migration driver")
}
