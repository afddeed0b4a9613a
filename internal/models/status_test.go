package models

import "testing"

func TestConsistent(t *testing.T) {
	cases := []struct {
		status Status
		sub    SubStatus
		want   bool
	}{
		{StatusValid, SubStatusValid, true},
		{StatusInvalid, SubStatusDisabled, true},
		{StatusInvalid, SubStatusDeleted, true},
		{StatusValid, SubStatusDisabled, false},
		{StatusValid, SubStatusDeleted, false},
		{StatusInvalid, SubStatusValid, false},
	}
	for _, tc := range cases {
		if got := Consistent(tc.status, tc.sub); got != tc.want {
			t.Errorf("Consistent(%d, %d) = %v, want %v", tc.status, tc.sub, got, tc.want)
		}
	}
}
