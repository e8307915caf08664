package filters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriterionJSONRoundTrip(t *testing.T) {
	original := NewDateRange(DateFieldTransport, day(2026, 5, 2), day(2026, 5, 9), "Transport maj")

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Criterion
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, KindDateRange, restored.Kind)
	assert.Equal(t, DateFieldTransport, restored.Range.AppliesTo)
	require.NotNil(t, restored.Range.From)
	require.NotNil(t, restored.Range.To)
	assert.True(t, restored.Range.From.Equal(*original.Range.From))
	assert.True(t, restored.Range.To.Equal(*original.Range.To))
}

func TestCriterionUnmarshalGeneratesMissingID(t *testing.T) {
	var c Criterion
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"status","label":"Nowe","value":"nowe"}`), &c))

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "nowe", c.Enum)
}

func TestCriterionUnmarshalRejectsUnknownKind(t *testing.T) {
	var c Criterion
	err := json.Unmarshal([]byte(`{"id":"x","kind":"mystery","value":"v"}`), &c)
	assert.Error(t, err)
}

func TestCriterionUnmarshalRejectsBadAppliesTo(t *testing.T) {
	var c Criterion
	err := json.Unmarshal([]byte(`{"id":"x","kind":"dateRange","value":{"from":"2026-03-01","appliesTo":"createdAt"}}`), &c)
	assert.Error(t, err)
}

func TestCriterionUnmarshalAcceptsLegacyTimestamps(t *testing.T) {
	var c Criterion
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"x","kind":"dateRange","value":{"from":"2026-03-10T14:30:00Z","appliesTo":"installationDate"}}`), &c))

	require.NotNil(t, c.Range.From)
	assert.Equal(t, "2026-03-10", c.Range.From.Format("2006-01-02"))
}

func TestNewDateRangeTruncatesToDay(t *testing.T) {
	from := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	c := NewDateRange(DateFieldInstallation, &from, nil, "10 marca")

	require.NotNil(t, c.Range.From)
	assert.True(t, c.Range.From.Equal(*day(2026, 3, 10)))
	assert.Nil(t, c.Range.To)
}

func TestReplaceKeySeparatesDateFields(t *testing.T) {
	install := NewDateRange(DateFieldInstallation, day(2026, 3, 1), nil, "")
	transport := NewDateRange(DateFieldTransport, day(2026, 3, 1), nil, "")

	assert.NotEqual(t, install.replaceKey(), transport.replaceKey())
	assert.Equal(t, install.replaceKey(), NewDateRange(DateFieldInstallation, day(2026, 4, 1), nil, "").replaceKey())
}
