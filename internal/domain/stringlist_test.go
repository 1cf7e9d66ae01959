package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foerderdata/fundwatch/internal/domain"
)

func TestStringList_Scan(t *testing.T) {
	t.Parallel()

	var fromBytes domain.StringList
	require.NoError(t, fromBytes.Scan([]byte(`["Zuschuss","Darlehen"]`)))
	assert.Equal(t, domain.StringList{"Zuschuss", "Darlehen"}, fromBytes)

	var fromString domain.StringList
	require.NoError(t, fromString.Scan(`["Bund"]`))
	assert.Equal(t, domain.StringList{"Bund"}, fromString)

	var fromNull domain.StringList
	require.NoError(t, fromNull.Scan(nil))
	assert.Nil(t, fromNull)

	var fromInt domain.StringList
	assert.Error(t, fromInt.Scan(42))
}

func TestStringList_Value(t *testing.T) {
	t.Parallel()

	value, err := domain.StringList{"Zuschuss"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["Zuschuss"]`, string(value.([]byte)))

	nullValue, err := domain.StringList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, nullValue)

	emptyValue, err := domain.StringList{}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(emptyValue.([]byte)))
}
