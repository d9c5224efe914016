package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := Generate(secret, "u-1", "c-1", "bodeguero", "stock-ledger", 5)
	require.NoError(t, err)

	claims, err := Parse(secret, "stock-ledger", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "c-1", claims.CompanyID)
	assert.Equal(t, "bodeguero", claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := Generate(secret, "u-1", "c-1", "admin", "stock-ledger", 5)
	require.NoError(t, err)

	_, err = Parse("otro-secret", "", tok)
	assert.Error(t, err, "firma incorrecta")

	_, err = Parse(secret, "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")

	expired, err := Generate(secret, "u-1", "c-1", "admin", "", -1)
	require.NoError(t, err)
	_, err = Parse(secret, "", expired)
	assert.Error(t, err, "expirado")

	noCompany, err := Generate(secret, "u-1", "", "admin", "", 5)
	require.NoError(t, err)
	_, err = Parse(secret, "", noCompany)
	assert.ErrorIs(t, err, ErrMissingClaims)

	_, err = Generate("", "u-1", "c-1", "admin", "", 5)
	assert.Error(t, err)
}
