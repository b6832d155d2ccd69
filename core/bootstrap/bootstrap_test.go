package bootstrap

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/applybot/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunOpensStorage(t *testing.T) {
	res, err := Run(context.Background(), Options[map[int64]bool]{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		OpenStorage: func(context.Context, *coreconfig.Config) (map[int64]bool, error) {
			return map[int64]bool{1: true}, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Storage[1] {
		t.Fatalf("storage = %+v", res.Storage)
	}
}

func TestRunPropagatesFailures(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), Options[int]{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
		OpenStorage: func(context.Context, *coreconfig.Config) (int, error) {
			t.Fatal("storage opened after logger failure")
			return 0, nil
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	_, err = Run(context.Background(), Options[int]{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		OpenStorage: func(context.Context, *coreconfig.Config) (int, error) {
			return 0, boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	if _, err := Run(context.Background(), Options[int]{LoggerInit: noLogger}); err == nil {
		t.Fatal("nil config accepted")
	}
}
