package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/trinio-labs/bake/internal/core/domain"
	"github.com/trinio-labs/bake/internal/core/ports"
	"github.com/trinio-labs/bake/internal/core/ports/mocks"
	"github.com/trinio-labs/bake/internal/engine/cache"
	"go.trai.ch/zerr"
)

var buildKey = domain.NewInternedString("app:build")

func newTier(ctrl *gomock.Controller, name string) *mocks.MockCacheStrategy {
	tier := mocks.NewMockCacheStrategy(ctrl)
	tier.EXPECT().Name().Return(name).AnyTimes()
	return tier
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func fingerprints() map[domain.InternedString]string {
	return map[domain.InternedString]string{buildKey: "fp-build"}
}

func TestCache_Fetch_FirstTierHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	artifact := &domain.Artifact{Key: "fp-build", Data: []byte("blob")}

	first := newTier(ctrl, "local")
	first.EXPECT().Fetch(gomock.Any(), "fp-build").Return(artifact, nil)
	// Second tier must not be consulted after a hit.
	second := newTier(ctrl, "s3")

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), quietLogger(ctrl))
	got, err := c.Fetch(context.Background(), buildKey)
	require.NoError(t, err)
	require.Equal(t, artifact, got)
}

func TestCache_Fetch_LowerTierHitWritesBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	artifact := &domain.Artifact{Key: "fp-build", Data: []byte("blob")}

	first := newTier(ctrl, "local")
	first.EXPECT().Fetch(gomock.Any(), "fp-build").Return(nil, nil)
	first.EXPECT().Store(gomock.Any(), "fp-build", artifact.Data).Return(nil)

	second := newTier(ctrl, "s3")
	second.EXPECT().Fetch(gomock.Any(), "fp-build").Return(artifact, nil)

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), quietLogger(ctrl))
	got, err := c.Fetch(context.Background(), buildKey)
	require.NoError(t, err)
	require.Equal(t, artifact, got)
}

func TestCache_Fetch_WriteBackFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	artifact := &domain.Artifact{Key: "fp-build", Data: []byte("blob")}

	first := newTier(ctrl, "local")
	first.EXPECT().Fetch(gomock.Any(), "fp-build").Return(nil, nil)
	first.EXPECT().Store(gomock.Any(), "fp-build", artifact.Data).Return(errors.New("disk full"))

	second := newTier(ctrl, "s3")
	second.EXPECT().Fetch(gomock.Any(), "fp-build").Return(artifact, nil)

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), quietLogger(ctrl))
	got, err := c.Fetch(context.Background(), buildKey)
	require.NoError(t, err)
	require.Equal(t, artifact, got)
}

func TestCache_Fetch_TierErrorFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	artifact := &domain.Artifact{Key: "fp-build", Data: []byte("blob")}

	first := newTier(ctrl, "local")
	first.EXPECT().Fetch(gomock.Any(), "fp-build").Return(nil, errors.New("corrupt read"))
	first.EXPECT().Store(gomock.Any(), "fp-build", artifact.Data).Return(nil)

	second := newTier(ctrl, "s3")
	second.EXPECT().Fetch(gomock.Any(), "fp-build").Return(artifact, nil)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), logger)
	got, err := c.Fetch(context.Background(), buildKey)
	require.NoError(t, err)
	require.Equal(t, artifact, got)
}

func TestCache_Fetch_AllTiersMiss(t *testing.T) {
	ctrl := gomock.NewController(t)

	first := newTier(ctrl, "local")
	first.EXPECT().Fetch(gomock.Any(), "fp-build").Return(nil, nil)
	second := newTier(ctrl, "s3")
	second.EXPECT().Fetch(gomock.Any(), "fp-build").Return(nil, nil)

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), quietLogger(ctrl))
	got, err := c.Fetch(context.Background(), buildKey)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCache_Fetch_UnknownRecipeIsMiss(t *testing.T) {
	ctrl := gomock.NewController(t)

	c := cache.New(nil, fingerprints(), quietLogger(ctrl))
	got, err := c.Fetch(context.Background(), domain.NewInternedString("app:other"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCache_Store_FansOutToAllTiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	blob := []byte("blob")

	first := newTier(ctrl, "local")
	first.EXPECT().Store(gomock.Any(), "fp-build", blob).Return(nil)
	second := newTier(ctrl, "s3")
	second.EXPECT().Store(gomock.Any(), "fp-build", blob).Return(nil)

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), quietLogger(ctrl))
	require.NoError(t, c.Store(context.Background(), buildKey, blob))
}

func TestCache_Store_PartialFailureSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	blob := []byte("blob")

	first := newTier(ctrl, "local")
	first.EXPECT().Store(gomock.Any(), "fp-build", blob).Return(errors.New("disk full"))
	second := newTier(ctrl, "s3")
	second.EXPECT().Store(gomock.Any(), "fp-build", blob).Return(nil)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), logger)
	require.NoError(t, c.Store(context.Background(), buildKey, blob))
}

func TestCache_Store_AllTiersFailing(t *testing.T) {
	ctrl := gomock.NewController(t)
	blob := []byte("blob")

	first := newTier(ctrl, "local")
	first.EXPECT().Store(gomock.Any(), "fp-build", blob).Return(errors.New("disk full"))
	second := newTier(ctrl, "s3")
	second.EXPECT().Store(gomock.Any(), "fp-build", blob).Return(errors.New("network down"))

	c := cache.New([]ports.CacheStrategy{first, second}, fingerprints(), quietLogger(ctrl))
	err := c.Store(context.Background(), buildKey, blob)
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	require.Equal(t, domain.ErrCacheStoreFailed.Error(), zErr.Message())
	require.Contains(t, zErr.Metadata(), "tiers")
}

func TestCache_Store_NoTiersIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)

	c := cache.New(nil, fingerprints(), quietLogger(ctrl))
	require.NoError(t, c.Store(context.Background(), buildKey, []byte("blob")))
}

func TestCache_KeyFor(t *testing.T) {
	ctrl := gomock.NewController(t)

	c := cache.New(nil, fingerprints(), quietLogger(ctrl))
	fp, ok := c.KeyFor(buildKey)
	require.True(t, ok)
	require.Equal(t, "fp-build", fp)

	_, ok = c.KeyFor(domain.NewInternedString("app:other"))
	require.False(t, ok)
}

func TestCache_Strategies(t *testing.T) {
	ctrl := gomock.NewController(t)

	c := cache.New([]ports.CacheStrategy{newTier(ctrl, "local"), newTier(ctrl, "gcs")}, nil, quietLogger(ctrl))
	require.Equal(t, []string{"local", "gcs"}, c.Strategies())
}
