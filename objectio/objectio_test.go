package objectio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLocation(t *testing.T) {
	testCases := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "out.png", want: Location{Path: "out.png"}},
		{in: "/tmp/frames/a.rgbf", want: Location{Path: "/tmp/frames/a.rgbf"}},
		{in: "gs://my-bucket/renders/a.png", want: Location{Bucket: "my-bucket", Object: "renders/a.png"}},
		{in: "gs://my-bucket", wantErr: true},
		{in: "gs://my-bucket/", wantErr: true},
		{in: "gs:///a.png", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := ParseLocation(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLocation(%q) = %+v, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLocation(%q): unexpected error %v", tc.in, err)
			continue
		}
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("ParseLocation(%q); diff (-got +want)\n%s", tc.in, diff)
		}
		if got.String() != tc.in {
			t.Errorf("String() = %q, want %q", got.String(), tc.in)
		}
	}
}

func TestLocalReadWrite(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	loc := Location{Path: filepath.Join(t.TempDir(), "frame.bin")}

	want := []byte("frame data")
	if err := s.Write(ctx, loc, "application/octet-stream", want); err != nil {
		t.Fatalf("Unexpected error writing: %v", err)
	}

	got, err := s.ReadAll(ctx, loc)
	if err != nil {
		t.Fatalf("Unexpected error reading: %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad contents; diff (-got +want)\n%s", diff)
	}
}

func TestRemoteWithoutClient(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	loc := Location{Bucket: "b", Object: "o"}

	if _, err := s.ReadAll(ctx, loc); !errors.Is(err, ErrNoGCSClient) {
		t.Errorf("ReadAll: got %v, want ErrNoGCSClient", err)
	}
	if err := s.Write(ctx, loc, "image/png", nil); !errors.Is(err, ErrNoGCSClient) {
		t.Errorf("Write: got %v, want ErrNoGCSClient", err)
	}
}
