package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyColumns_CabeceraDelCSV(t *testing.T) {
	assert.Equal(t,
		[]string{`"id"`, `"product_id"`, `"created_at"`},
		copyColumns("id,product_id,created_at\r\n"))
	assert.Equal(t, []string{`"Raro"`}, copyColumns(`"Raro"`+"\n"))
	assert.Nil(t, copyColumns(""))
}
