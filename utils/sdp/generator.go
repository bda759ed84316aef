package sdp

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/ugparu/kahawai/rate"
	"github.com/ugparu/kahawai/transport"
)

// Stream defaults applied by Generate to zero fields.
const (
	defaultPayloadType = 112
	defaultTTL         = 64
	defaultSampling    = "YCbCr-4:2:2"
	defaultDepth       = 10
	defaultColorimetry = "BT709"
	defaultTCS         = "SDR"
)

// Generate builds an ST 2110-20 session description for the given video streams.
// Every stream rate must classify into a supported frame rate.
func Generate(sess Session, videos []Video) (string, error) {
	if _, err := transport.ParseIPv4(sess.Source); err != nil {
		return "", oops.In("sdp").Wrapf(err, "session source")
	}

	name := sess.Name
	if name == "" {
		name = "kahawai"
	}

	lines := make([]string, 0, 4+8*len(videos))

	// Session-level.
	lines = append(lines,
		"v=0",
		"o=- 0 0 IN IP4 "+sess.Source,
		"s="+name,
		"t=0 0",
	)

	for i, v := range videos {
		ml, err := marshalVideo(sess, v)
		if err != nil {
			return "", oops.In("sdp").With("stream", i).Wrapf(err, "video stream")
		}
		lines = append(lines, ml...)
	}

	return strings.Join(lines, "\r\n") + "\r\n", nil
}

func marshalVideo(sess Session, v Video) ([]string, error) {
	dst, err := transport.ParseIPv4(v.Destination)
	if err != nil {
		return nil, err
	}
	if _, err = rate.Classify(v.Rate); err != nil {
		return nil, err
	}
	if v.Width <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", v.Width, v.Height)
	}

	pt := v.PayloadType
	if pt == 0 {
		pt = defaultPayloadType
	}

	conn := "c=IN IP4 " + v.Destination
	if isMulticast(dst) {
		ttl := v.TTL
		if ttl == 0 {
			ttl = defaultTTL
		}
		conn = fmt.Sprintf("%s/%d", conn, ttl)
	}

	fmtp := []string{
		"sampling=" + orDefault(v.Sampling, defaultSampling),
		fmt.Sprintf("width=%d", v.Width),
		fmt.Sprintf("height=%d", v.Height),
		"exactframerate=" + v.Rate.String(),
		fmt.Sprintf("depth=%d", orDefaultInt(v.Depth, defaultDepth)),
		"TCS=" + orDefault(v.TCS, defaultTCS),
		"colorimetry=" + orDefault(v.Colorimetry, defaultColorimetry),
		"PM=2110GPM",
		"SSN=ST2110-20:2017",
		"TP=2110TPN",
	}

	return []string{
		fmt.Sprintf("m=video %d RTP/AVP %d", v.Port, pt),
		conn,
		fmt.Sprintf("a=source-filter: incl IN IP4 %s %s", v.Destination, sess.Source),
		fmt.Sprintf("a=rtpmap:%d %s", pt, rawEncoding),
		fmt.Sprintf("a=fmtp:%d %s; ", pt, strings.Join(fmtp, "; ")),
		"a=mediaclk:direct=0",
	}, nil
}

func isMulticast(addr [4]byte) bool {
	return addr[0] >= 224 && addr[0] <= 239
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
