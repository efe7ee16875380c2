package metrics

import (
	"errors"
	"testing"
	"time"

	"foster-tracker/internal/domain/listing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveListing(t *testing.T) {
	m := New()

	m.ObserveListing("groups", listing.PathClient, 3*time.Millisecond, nil)
	m.ObserveListing("groups", listing.PathClient, time.Millisecond, &listing.FetchError{Kind: "groups", Err: listing.ErrOffline})
	m.ObserveListing("animals", listing.PathServer, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.listings.WithLabelValues("groups", "client")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listings.WithLabelValues("animals", "server")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listingErrors.WithLabelValues("groups", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listingErrors.WithLabelValues("animals", "false")))
}

func TestObserveCascade(t *testing.T) {
	m := New()

	m.ObserveCascade(3, 1)
	m.ObserveCascade(2, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cascades))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.cascadeUpdated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cascadeFailed))
}
