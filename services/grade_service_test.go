package services

import (
	"errors"
	"testing"
)

func TestValidateScore(t *testing.T) {
	valid := []float64{0, 0.5, 5, 9.99, 10}
	for _, score := range valid {
		if err := ValidateScore(score); err != nil {
			t.Errorf("ValidateScore(%v) = %v, want nil", score, err)
		}
	}

	invalid := []float64{-0.01, -1, 10.01, 11, 100}
	for _, score := range invalid {
		if err := ValidateScore(score); !errors.Is(err, ErrScoreOutOfRange) {
			t.Errorf("ValidateScore(%v) = %v, want ErrScoreOutOfRange", score, err)
		}
	}
}

func TestLetterForScore(t *testing.T) {
	cases := []struct {
		score  float64
		letter string
	}{
		{10, "A"},
		{8.5, "A"},
		{8.49, "B+"},
		{8.0, "B+"},
		{7.99, "B"},
		{7.0, "B"},
		{6.99, "C+"},
		{6.5, "C+"},
		{6.49, "C"},
		{5.5, "C"},
		{5.49, "D"},
		{4.0, "D"},
		{3.99, "F"},
		{0, "F"},
	}

	for _, tc := range cases {
		if got := LetterForScore(tc.score); got != tc.letter {
			t.Errorf("LetterForScore(%v) = %q, want %q", tc.score, got, tc.letter)
		}
	}
}
