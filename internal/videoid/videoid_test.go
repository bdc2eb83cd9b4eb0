package videoid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSupportedURL_Accepts(t *testing.T) {
	t.Parallel()

	for _, u := range []string{
		"https://www.youtube.com/watch?v=ggLajT7aMMk",
		"http://www.youtube.com/watch?v=ggLajT7aMMk",
		"https://youtube.com/watch?v=ggLajT7aMMk&t=123s",
		"www.youtube.com/watch?v=ggLajT7aMMk",
		"youtube.com/watch?v=ggLajT7aMMk",
		"https://youtube.com/shorts/ggLajT7aMMk",
		"youtube.com/shorts/ggLajT7aMMk?feature=share",
		"https://youtu.be/ggLajT7aMMk",
		"youtu.be/ggLajT7aMMk?t=120",
		"  https://youtu.be/ggLajT7aMMk  ",
	} {
		require.True(t, IsSupportedURL(u), u)
	}
}

func TestIsSupportedURL_Rejects(t *testing.T) {
	t.Parallel()

	for _, u := range []string{
		"",
		"   ",
		"https://www.youtube.com/",
		"https://www.youtube.com/watch?v=",
		"https://youtu.be/",
		"https://m.youtube.com/watch?v=ggLajT7aMMk",
		"https://vimeo.com/123",
		"ftp://youtube.com/watch?v=abc",
		"https://evil.com/youtube.com/watch?v=abc",
		"https://youtube.com.evil.com/watch?v=abc",
		"https://www.youtube.com/playlist?list=PL123",
		"not a url",
	} {
		require.False(t, IsSupportedURL(u), u)
	}
}

func TestExtractYouTubeVideoID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.youtube.com/watch?v=ggLajT7aMMk&t=123s": "ggLajT7aMMk",
		"youtube.com/watch?v=ggLajT7aMMk":                    "ggLajT7aMMk",
		"https://youtube.com/shorts/ggLajT7aMMk?feature=x":   "ggLajT7aMMk",
		"youtu.be/ggLajT7aMMk?t=120":                         "ggLajT7aMMk",
		"https://YOUTU.BE:443/ggLajT7aMMk":                   "ggLajT7aMMk",
	}
	for in, want := range cases {
		got, err := ExtractYouTubeVideoID(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ExtractYouTubeVideoID("https://vimeo.com/123")
	require.Error(t, err)
	_, err = ExtractYouTubeVideoID("")
	require.Error(t, err)
}
