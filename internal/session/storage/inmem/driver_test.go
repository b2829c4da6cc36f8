package inmem

import (
	"context"
	"testing"

	"github.com/countyhealth/portal/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver(t *testing.T) {
	driver, err := New()
	require.NoError(t, err)
	defer driver.Close()

	obj, err := driver.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, obj)

	require.NoError(t, driver.Save(context.Background(), &session.Session{Token: "tok-123"}))
	require.NoError(t, driver.Save(context.Background(), &session.Session{Token: "tok-456"}))

	obj, err = driver.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, "tok-456", obj.Token)

	require.NoError(t, driver.Clear(context.Background()))
	require.NoError(t, driver.Clear(context.Background()))

	obj, err = driver.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, obj)
}
