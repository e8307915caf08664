package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayAt(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDatePredicateNilWithoutDateParams(t *testing.T) {
	assert.Nil(t, datePredicate(ListOrdersRequest{}))
}

func TestDatePredicateSingleDaySemantics(t *testing.T) {
	pred := datePredicate(ListOrdersRequest{InstallationDateFrom: dayAt(2026, 3, 10)})
	require.NotNil(t, pred)

	match := Order{InstallationDate: dayAt(2026, 3, 10)}
	miss := Order{InstallationDate: dayAt(2026, 3, 11)}
	noDate := Order{}

	assert.True(t, pred(match.Subject()))
	assert.False(t, pred(miss.Subject()))
	assert.False(t, pred(noDate.Subject()))
}

func TestDatePredicateCombinesBothFields(t *testing.T) {
	pred := datePredicate(ListOrdersRequest{
		InstallationDateFrom: dayAt(2026, 3, 1),
		InstallationDateTo:   dayAt(2026, 3, 31),
		TransportDateFrom:    dayAt(2026, 3, 5),
		TransportDateTo:      dayAt(2026, 3, 6),
	})
	require.NotNil(t, pred)

	both := Order{InstallationDate: dayAt(2026, 3, 15), TransportDate: dayAt(2026, 3, 5)}
	onlyInstall := Order{InstallationDate: dayAt(2026, 3, 15), TransportDate: dayAt(2026, 3, 20)}

	assert.True(t, pred(both.Subject()))
	assert.False(t, pred(onlyInstall.Subject()))
}

func TestPinSingleDayBoundsClosesFromOnlyWindows(t *testing.T) {
	req := ListOrdersRequest{
		InstallationDateFrom: dayAt(2026, 3, 10),
		TransportDateFrom:    dayAt(2026, 3, 5),
		TransportDateTo:      dayAt(2026, 3, 6),
	}
	pinSingleDayBounds(&req)

	// From-only means that exact day, so the SQL window closes on it.
	require.NotNil(t, req.InstallationDateTo)
	assert.Equal(t, *req.InstallationDateFrom, *req.InstallationDateTo)

	// A window with an explicit to stays untouched.
	assert.Equal(t, dayAt(2026, 3, 6), req.TransportDateTo)

	empty := ListOrdersRequest{}
	pinSingleDayBounds(&empty)
	assert.Nil(t, empty.InstallationDateTo)
	assert.Nil(t, empty.TransportDateTo)
}

func TestParseDay(t *testing.T) {
	got := parseDay("2026-03-10")
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-10", got.Format("2006-01-02"))

	assert.Nil(t, parseDay(""))
	assert.Nil(t, parseDay("10.03.2026"))
}
