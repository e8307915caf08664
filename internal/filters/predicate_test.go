package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCompileEmptySetAcceptsEverything(t *testing.T) {
	pred := Compile(nil)

	assert.True(t, pred(Subject{}))
	assert.True(t, pred(Subject{InstallationStatus: "anulowane", StoreID: 99}))
}

func TestCompileSameKindCombinesWithOr(t *testing.T) {
	pred := Compile([]Criterion{
		NewEnum(KindStatus, "nowe", "Nowe"),
		NewEnum(KindStatus, "zaplanowany", "Zaplanowany"),
	})

	assert.True(t, pred(Subject{InstallationStatus: "nowe"}))
	assert.True(t, pred(Subject{InstallationStatus: "zaplanowany"}))
	assert.False(t, pred(Subject{InstallationStatus: "wykonane"}))
}

func TestCompileDistinctKindsCombineWithAnd(t *testing.T) {
	pred := Compile([]Criterion{
		NewEnum(KindStatus, "nowe", "Nowe"),
		NewStore(3, "Katowice"),
	})

	assert.True(t, pred(Subject{InstallationStatus: "nowe", StoreID: 3}))
	assert.False(t, pred(Subject{InstallationStatus: "nowe", StoreID: 4}))
	assert.False(t, pred(Subject{InstallationStatus: "wykonane", StoreID: 3}))
}

func TestCompileFlagKinds(t *testing.T) {
	pred := Compile([]Criterion{
		NewFlag(KindSettlement, true, "Do rozliczenia"),
		NewFlag(KindTransport, false, "Bez transportu"),
	})

	assert.True(t, pred(Subject{WillBeSettled: true, WithTransport: false}))
	assert.False(t, pred(Subject{WillBeSettled: true, WithTransport: true}))
	assert.False(t, pred(Subject{WillBeSettled: false, WithTransport: false}))
}

func TestCompileDateRangeInclusiveBounds(t *testing.T) {
	pred := Compile([]Criterion{
		NewDateRange(DateFieldInstallation, day(2026, 3, 10), day(2026, 3, 20), "Marzec"),
	})

	assert.True(t, pred(Subject{InstallationDate: day(2026, 3, 10)}))
	assert.True(t, pred(Subject{InstallationDate: day(2026, 3, 20)}))
	assert.True(t, pred(Subject{InstallationDate: day(2026, 3, 15)}))
	assert.False(t, pred(Subject{InstallationDate: day(2026, 3, 9)}))
	assert.False(t, pred(Subject{InstallationDate: day(2026, 3, 21)}))
}

func TestCompileDateRangeSingleDay(t *testing.T) {
	pred := Compile([]Criterion{
		NewDateRange(DateFieldInstallation, day(2026, 3, 10), nil, "10 marca"),
	})

	assert.True(t, pred(Subject{InstallationDate: day(2026, 3, 10)}))
	assert.False(t, pred(Subject{InstallationDate: day(2026, 3, 11)}))
	assert.False(t, pred(Subject{InstallationDate: day(2026, 3, 9)}))
}

func TestCompileDateRangeIgnoresTimeOfDay(t *testing.T) {
	pred := Compile([]Criterion{
		NewDateRange(DateFieldInstallation, day(2026, 3, 10), nil, "10 marca"),
	})

	late := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)
	assert.True(t, pred(Subject{InstallationDate: &late}))
}

func TestCompileDateRangeExcludesMissingDates(t *testing.T) {
	pred := Compile([]Criterion{
		NewDateRange(DateFieldInstallation, day(2026, 3, 1), day(2026, 3, 31), "Marzec"),
	})

	assert.False(t, pred(Subject{InstallationDate: nil}))
	zero := time.Time{}
	assert.False(t, pred(Subject{InstallationDate: &zero}))
}

func TestCompileDateRangeFieldsCombineWithAnd(t *testing.T) {
	pred := Compile([]Criterion{
		NewDateRange(DateFieldInstallation, day(2026, 3, 1), day(2026, 3, 31), "Montaż w marcu"),
		NewDateRange(DateFieldTransport, day(2026, 3, 5), day(2026, 3, 6), "Transport 5-6"),
	})

	assert.True(t, pred(Subject{
		InstallationDate: day(2026, 3, 15),
		TransportDate:    day(2026, 3, 5),
	}))
	assert.False(t, pred(Subject{
		InstallationDate: day(2026, 3, 15),
		TransportDate:    day(2026, 3, 9),
	}))
	assert.False(t, pred(Subject{
		InstallationDate: day(2026, 4, 1),
		TransportDate:    day(2026, 3, 5),
	}))
}

func TestCompileTransportStatusAgainstTransportField(t *testing.T) {
	pred := Compile([]Criterion{
		NewEnum(KindTransportStatus, "dostarczone", "Dostarczone"),
	})

	assert.True(t, pred(Subject{TransportStatus: "dostarczone", InstallationStatus: "nowe"}))
	assert.False(t, pred(Subject{TransportStatus: "nowe", InstallationStatus: "dostarczone"}))
}
