package transcriber

import "testing"

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name string
		text string
		cfg  Config
		want string
	}{
		{
			name: "no adjustments",
			text: "Hello world.",
			cfg:  Config{},
			want: "Hello world.",
		},
		{
			name: "trims surrounding whitespace",
			text: "  Hello world.  ",
			cfg:  Config{},
			want: "Hello world.",
		},
		{
			name: "removes trailing period",
			text: "Hello world.",
			cfg:  Config{RemoveTrailingPeriod: true},
			want: "Hello world",
		},
		{
			name: "only strips the final period",
			text: "One. Two.",
			cfg:  Config{RemoveTrailingPeriod: true},
			want: "One. Two",
		},
		{
			name: "adds trailing space",
			text: "Hello world.",
			cfg:  Config{AddTrailingSpace: true},
			want: "Hello world. ",
		},
		{
			name: "removes capitalization",
			text: "Hello World.",
			cfg:  Config{RemoveCapitalization: true},
			want: "hello world.",
		},
		{
			name: "all adjustments combined",
			text: " Hello World. ",
			cfg: Config{
				RemoveTrailingPeriod: true,
				AddTrailingSpace:     true,
				RemoveCapitalization: true,
			},
			want: "hello world ",
		},
		{
			name: "empty input stays empty without trailing space",
			text: "   ",
			cfg:  Config{RemoveTrailingPeriod: true},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postProcess(tt.text, tt.cfg); got != tt.want {
				t.Errorf("postProcess() = %q, want %q", got, tt.want)
			}
		})
	}
}
