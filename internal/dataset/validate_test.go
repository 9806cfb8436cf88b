package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() RawRecord {
	return RawRecord{
		Temperature: NumberCell(23.5),
		Humidity:    NumberCell(55),
		CO2:         NumberCell(412),
		Date:        StringCell("05/03/2024"),
		Category:    StringCell("Sala A"),
	}
}

func TestValidateRecord(t *testing.T) {
	t.Run("valid record accepted", func(t *testing.T) {
		sample, ok := ValidateRecord(validRecord())
		require.True(t, ok)
		assert.InDelta(t, 23.5, sample.Temperature, 1e-9)
		assert.InDelta(t, 55.0, sample.Humidity, 1e-9)
		assert.InDelta(t, 412.0, sample.CO2, 1e-9)
		assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local), sample.Timestamp)
		assert.Equal(t, "Sala A", sample.Category)
	})

	t.Run("numeric category stringified", func(t *testing.T) {
		rec := validRecord()
		rec.Category = NumberCell(101)
		sample, ok := ValidateRecord(rec)
		require.True(t, ok)
		assert.Equal(t, "101", sample.Category)
	})

	t.Run("unparseable measurement still counts as present", func(t *testing.T) {
		rec := validRecord()
		rec.Humidity = StringCell("n/a")
		sample, ok := ValidateRecord(rec)
		require.True(t, ok)
		assert.Zero(t, sample.Humidity)
	})

	t.Run("missing date rejected", func(t *testing.T) {
		rec := validRecord()
		rec.Date = AbsentCell()
		_, ok := ValidateRecord(rec)
		assert.False(t, ok)
	})

	t.Run("unparseable date rejected", func(t *testing.T) {
		rec := validRecord()
		rec.Date = StringCell("sexta-feira")
		_, ok := ValidateRecord(rec)
		assert.False(t, ok)
	})

	t.Run("empty category rejected", func(t *testing.T) {
		rec := validRecord()
		rec.Category = StringCell("")
		_, ok := ValidateRecord(rec)
		assert.False(t, ok)
	})

	t.Run("absent category rejected", func(t *testing.T) {
		rec := validRecord()
		rec.Category = AbsentCell()
		_, ok := ValidateRecord(rec)
		assert.False(t, ok)
	})

	t.Run("absent measurement rejected", func(t *testing.T) {
		for _, mutate := range []func(*RawRecord){
			func(r *RawRecord) { r.Temperature = AbsentCell() },
			func(r *RawRecord) { r.Humidity = AbsentCell() },
			func(r *RawRecord) { r.CO2 = AbsentCell() },
		} {
			rec := validRecord()
			mutate(&rec)
			_, ok := ValidateRecord(rec)
			assert.False(t, ok)
		}
	})

	t.Run("zero measurement accepted", func(t *testing.T) {
		rec := validRecord()
		rec.CO2 = NumberCell(0)
		sample, ok := ValidateRecord(rec)
		require.True(t, ok)
		assert.Zero(t, sample.CO2)
	})
}
