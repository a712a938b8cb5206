package custody

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/iov-one/custody/errors"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"zero time as string": {
			raw:      `"1970-01-01T01:00:00+01:00"`,
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2019-04-04T11:35:40.89181085+02:00"`,
			wantTime: 1554370540,
		},
		"a time as number": {
			raw:      "1554370540",
			wantTime: 1554370540,
		},
		"negative number": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"negative time as string": {
			raw:     `"1950-01-01T01:00:00+01:00"`,
			wantErr: errors.ErrInput,
		},
		"invalid string": {
			raw:     `"not a time string"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	base := AsUnixTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if got := base.Add(90 * time.Second); got != base+90 {
		t.Fatalf("want %d, got %d", base+90, got)
	}
	if got := base.Add(-time.Hour); got != base-3600 {
		t.Fatalf("want %d, got %d", base-3600, got)
	}
	if !base.Time().Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %s", base.Time())
	}
}

func TestUnixDurationUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    UnixDuration
		wantErr *errors.Error
	}{
		"seconds": {
			raw:  "90",
			want: 90,
		},
		"duration string": {
			raw:  `"2h"`,
			want: 7200,
		},
		"fraction is dropped": {
			raw:  `"1.5s"`,
			want: 1,
		},
		"invalid string": {
			raw:     `"two hours"`,
			wantErr: errors.ErrInput,
		},
		"invalid type": {
			raw:     `{}`,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixDuration
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil && got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
	if d := UnixDuration(60).Duration(); d != time.Minute {
		t.Fatalf("unexpected duration %s", d)
	}
}

func TestUnixDurationIsClamped(t *testing.T) {
	cases := map[UnixDuration]time.Duration{
		3600:          time.Hour,
		-3600:         -time.Hour,
		3600 + 1<<55:  math.MaxInt64,
		-3600 - 1<<55: math.MinInt64,
	}
	for in, want := range cases {
		if got := in.Duration(); got != want {
			t.Errorf("%d: want %d, got %d", int64(in), want, got)
		}
	}
}
