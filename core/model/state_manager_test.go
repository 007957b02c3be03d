package model

import (
	"sync"
	"testing"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()

	if s.IsFitted() {
		t.Fatal("new StateManager must not be fitted")
	}

	err := s.RequireFitted("RVR", "Predict")
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}

	s.SetFitted(3, 100)
	if !s.IsFitted() {
		t.Fatal("expected fitted state")
	}
	if f, n := s.GetDimensions(); f != 3 || n != 100 {
		t.Errorf("GetDimensions() = (%d, %d), want (3, 100)", f, n)
	}
	if err := s.RequireFeatures("RVR.Predict", 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err = s.RequireFeatures("RVR.Predict", 2)
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if de.Expected != 3 || de.Got != 2 {
		t.Errorf("unexpected dimension error: %+v", de)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset must clear the fitted flag")
	}
}

func TestStateManagerConcurrentReads(t *testing.T) {
	s := NewStateManager()
	s.SetFitted(2, 10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.IsFitted()
				_, _ = s.GetDimensions()
			}
		}()
	}
	wg.Wait()
}
