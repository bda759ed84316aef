package sdp

import (
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"
	"github.com/samber/oops"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/utils"
)

// Session represents the session-level part of a description.
type Session struct {
	Name   string // Session name, "kahawai" when empty.
	Source string // Unicast IPv4 address of the sending port.
}

// Video represents one ST 2110-20 uncompressed video stream.
type Video struct {
	Destination string           // Destination IPv4 address, usually multicast.
	Port        int              // Destination UDP port.
	PayloadType int              // Dynamic RTP payload type.
	TTL         int              // Multicast TTL.
	Width       int              // Frame width in pixels.
	Height      int              // Frame height in pixels.
	Rate        kahawai.Rational // Exact frame rate.
	Sampling    string           // Pixel sampling, e.g. YCbCr-4:2:2.
	Depth       int              // Bits per component.
	Colorimetry string           // e.g. BT709.
	TCS         string           // Transfer characteristic system, e.g. SDR.
}

const rawEncoding = "raw/90000"

// Parse reads the session and every ST 2110-20 video stream out of an SDP.
// Media sections of other kinds are skipped.
func Parse(raw string) (Session, []Video, error) {
	var sd psdp.SessionDescription
	if err := sd.Unmarshal([]byte(raw)); err != nil {
		return Session{}, nil, oops.In("sdp").Wrapf(err, "unmarshal session description")
	}

	sess := Session{
		Name:   string(sd.SessionName),
		Source: sd.Origin.UnicastAddress,
	}

	videos := make([]Video, 0, len(sd.MediaDescriptions))
	for _, md := range sd.MediaDescriptions {
		if md.MediaName.Media != "video" {
			continue
		}
		if rtpmap, ok := md.Attribute("rtpmap"); !ok || !strings.HasSuffix(rtpmap, " "+rawEncoding) {
			continue
		}

		v := Video{Port: md.MediaName.Port.Value}
		if len(md.MediaName.Formats) > 0 {
			pt, err := atoi("payload type", md.MediaName.Formats[0])
			if err != nil {
				return Session{}, nil, err
			}
			v.PayloadType = pt
		}

		ci := md.ConnectionInformation
		if ci == nil {
			ci = sd.ConnectionInformation
		}
		if ci != nil && ci.Address != nil {
			var err error
			if v.Destination, v.TTL, err = connectionAddress(ci.Address); err != nil {
				return Session{}, nil, err
			}
		}

		if fmtp, ok := md.Attribute("fmtp"); ok {
			if err := parseFmtp(&v, fmtp); err != nil {
				return Session{}, nil, err
			}
		}
		videos = append(videos, v)
	}
	return sess, videos, nil
}

func connectionAddress(a *psdp.Address) (addr string, ttl int, err error) {
	addr = a.Address
	if a.TTL != nil {
		ttl = *a.TTL
	}
	if host, rest, found := strings.Cut(addr, "/"); found {
		addr = host
		if ttl == 0 {
			t, _, _ := strings.Cut(rest, "/")
			if ttl, err = atoi("ttl", t); err != nil {
				return "", 0, err
			}
		}
	}
	return addr, ttl, nil
}

func atoi(field, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, oops.In("sdp").Wrap(&utils.InvalidArgumentError{Field: field, Value: s, Reason: "not an integer"})
	}
	return v, nil
}

// parseFmtp reads "<pt> key=value; key=value; ..." into v.
func parseFmtp(v *Video, fmtp string) error {
	_, params, found := strings.Cut(fmtp, " ")
	if !found {
		return nil
	}
	var err error
	for _, param := range strings.Split(params, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok {
			continue
		}
		switch key {
		case "sampling":
			v.Sampling = val
		case "width":
			v.Width, err = atoi("width", val)
		case "height":
			v.Height, err = atoi("height", val)
		case "depth":
			v.Depth, err = atoi("depth", val)
		case "colorimetry":
			v.Colorimetry = val
		case "TCS":
			v.TCS = val
		case "exactframerate":
			r, err := kahawai.ParseRational(val)
			if err != nil {
				return oops.In("sdp").With("fmtp", fmtp).Wrapf(err, "exactframerate")
			}
			v.Rate = r
		}
		if err != nil {
			return err
		}
	}
	return nil
}
