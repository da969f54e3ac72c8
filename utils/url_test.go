package utils

import "testing"

func TestEncodeURLWithSpaces(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "space in path",
			input:    "http://cdn.example/movies/the matrix.mp4",
			expected: "http://cdn.example/movies/the%20matrix.mp4",
		},
		{
			name:     "space in query",
			input:    "http://cdn.example/stream?title=the matrix",
			expected: "http://cdn.example/stream?title=the%20matrix",
		},
		{
			name:     "already encoded",
			input:    "http://cdn.example/movies/the%20matrix.mp4",
			expected: "http://cdn.example/movies/the%20matrix.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeURLWithSpaces(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("EncodeURLWithSpaces(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
