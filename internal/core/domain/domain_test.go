package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestResolveSource_Key(t *testing.T) {
	t.Parallel()

	t.Run("target dir excluded", func(t *testing.T) {
		t.Parallel()
		a := domain.ResolveSource{Path: "/artifacts/app.apk", TargetDir: "/tmp/run1"}
		b := domain.ResolveSource{Path: "/artifacts/app.apk", TargetDir: "/tmp/run2"}
		assert.Equal(t, a.Key(), b.Key())
	})

	t.Run("parameter order is canonical", func(t *testing.T) {
		t.Parallel()
		a := domain.ResolveSource{
			Path:       "/artifacts/app.apk",
			Parameters: map[string]string{"x": "1", "y": "2"},
		}
		b := domain.ResolveSource{
			Path:       "/artifacts/app.apk",
			Parameters: map[string]string{"y": "2", "x": "1"},
		}
		assert.Equal(t, a.Key(), b.Key())
	})

	t.Run("parameters distinguish keys", func(t *testing.T) {
		t.Parallel()
		a := domain.ResolveSource{Path: "/artifacts/app.apk"}
		b := domain.ResolveSource{
			Path:       "/artifacts/app.apk",
			Parameters: map[string]string{"decompress": "true"},
		}
		assert.NotEqual(t, a.Key(), b.Key())
	})
}

func TestResolveSource_Team(t *testing.T) {
	t.Parallel()

	s := domain.ResolveSource{Path: "/a"}
	assert.Equal(t, domain.DefaultTeam, s.Team())

	s.Parameters = map[string]string{domain.ParamTeam: "android-infra"}
	assert.Equal(t, "android-infra", s.Team())
}

func TestChecksum_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		checksum domain.Checksum
		wantErr  error
	}{
		{
			name:     "valid sha256",
			checksum: domain.Checksum{Algorithm: domain.ChecksumSHA256, Hex: "ab12cd"},
		},
		{
			name:     "valid xxh64",
			checksum: domain.Checksum{Algorithm: domain.ChecksumXXH64, Hex: "0011aaff"},
		},
		{
			name:     "unknown algorithm",
			checksum: domain.Checksum{Algorithm: "md5", Hex: "ab12"},
			wantErr:  domain.ErrUnknownChecksumAlgorithm,
		},
		{
			name:     "empty hex",
			checksum: domain.Checksum{Algorithm: domain.ChecksumSHA256},
			wantErr:  domain.ErrMalformedChecksum,
		},
		{
			name:     "uppercase hex rejected",
			checksum: domain.Checksum{Algorithm: domain.ChecksumSHA256, Hex: "AB12"},
			wantErr:  domain.ErrMalformedChecksum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.checksum.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestCacheKey_RelativePath(t *testing.T) {
	t.Parallel()

	source := domain.ResolveSource{Path: "/artifacts/app.apk"}
	key := domain.NewCacheKey(source, domain.Checksum{Algorithm: domain.ChecksumSHA256, Hex: "deadbeef"})

	require.NoError(t, key.Validate())
	assert.Equal(t, "ats/sha256/deadbeef", key.RelativePath())
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	valid := domain.Settings{
		RootDir:      "/var/cache/stash",
		MaxSizeBytes: 1 << 30,
		TrimToRatio:  0.8,
		ScanInterval: time.Minute,
		Team:         domain.DefaultTeam,
		Workers:      4,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*domain.Settings)
	}{
		{"empty root", func(s *domain.Settings) { s.RootDir = "" }},
		{"zero size", func(s *domain.Settings) { s.MaxSizeBytes = 0 }},
		{"ratio at one", func(s *domain.Settings) { s.TrimToRatio = 1 }},
		{"ratio at zero", func(s *domain.Settings) { s.TrimToRatio = 0 }},
		{"no interval", func(s *domain.Settings) { s.ScanInterval = 0 }},
		{"no workers", func(s *domain.Settings) { s.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidSettings))
		})
	}
}

func TestKeyFingerprint(t *testing.T) {
	t.Parallel()

	a := domain.KeyFingerprint("/remote/app.apk")
	assert.Len(t, a, 16)
	assert.Equal(t, a, domain.KeyFingerprint("/remote/app.apk"))
	assert.NotEqual(t, a, domain.KeyFingerprint("/remote/lib.so"))
}

func TestSentinels_SurviveMetadataDecoration(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		domain.ErrUnknownChecksumAlgorithm,
		domain.ErrMalformedChecksum,
		domain.ErrMissingTeam,
		domain.ErrChecksumMismatch,
		domain.ErrNoResult,
		domain.ErrInvalidSettings,
	}
	for _, sentinel := range sentinels {
		decorated := zerr.With(zerr.With(sentinel, "path", "/remote/app.apk"), "attempt", 2)
		assert.ErrorIs(t, decorated, sentinel)
		assert.ErrorIs(t, zerr.Wrap(sentinel, "resolve failed"), sentinel)
	}
}
