package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/suite"

	"github.com/willbeason/multibrot/pkg/config"
	"github.com/willbeason/multibrot/pkg/render"
)

type ServerSuite struct {
	suite.Suite
	srv  *Server
	http *httptest.Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	cfg := config.Default()
	cfg.Width = 16
	cfg.Height = 12
	cfg.MaxDimension = 64

	s.srv = New(cfg, slog.New(slog.DiscardHandler))
	s.http = httptest.NewServer(s.srv.Router())
}

func (s *ServerSuite) TearDownTest() {
	s.http.Close()
}

func (s *ServerSuite) get(path string) *http.Response {
	resp, err := http.Get(s.http.URL + path)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *ServerSuite) decodeJSON(resp *http.Response, v any) {
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func (s *ServerSuite) TestHealth() {
	resp := s.get("/healthz")
	s.Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal("ok", string(body))
}

func (s *ServerSuite) TestRender() {
	s.Run("mandelbrot with defaults", func() {
		resp := s.get("/render")
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("image/png", resp.Header.Get("Content-Type"))
		s.Equal("#000000", resp.Header.Get("X-Background-Color"))

		img, err := png.Decode(resp.Body)
		s.Require().NoError(err)
		s.Equal(16, img.Bounds().Dx())
		s.Equal(12, img.Bounds().Dy())
	})

	s.Run("julia from a click", func() {
		resp := s.get("/render?mode=julia&u=0.3&v=0.4&width=8&height=8&outside=%23102030")
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("#102030", resp.Header.Get("X-Background-Color"))

		img, err := png.Decode(resp.Body)
		s.Require().NoError(err)
		s.Equal(8, img.Bounds().Dx())
	})

	s.Run("single pixel matches the driver", func() {
		resp := s.get("/render?width=1&height=1")
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		img, err := png.Decode(resp.Body)
		s.Require().NoError(err)

		want := render.DefaultParams(render.Mandelbrot).Colors.At(0.01)
		r, g, b, a := img.At(0, 0).RGBA()
		s.Equal([4]uint32{uint32(want.R) * 0x101, uint32(want.G) * 0x101, uint32(want.B) * 0x101, 0xffff}, [4]uint32{r, g, b, a})
	})
}

func (s *ServerSuite) TestRenderRejectsBadRequests() {
	for _, query := range []string{
		"mode=burning-ship",
		"mode=julia",
		"width=abc",
		"width=65",
		"width=-3",
		"exponent=-1",
		"iterations=-2",
		"iterations=100001",
		"exponent=33",
		"inside=cyan",
		"region=atlantis",
		"remin=-1&remax=1",
		"re=zero&im=1",
	} {
		s.Run(query, func() {
			resp := s.get("/render?" + query)
			s.Equal(http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			s.decodeJSON(resp, &body)
			s.NotEmpty(body.Error)
		})
	}
}

func (s *ServerSuite) TestPoint() {
	resp := s.get("/point?u=0&v=0")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var p pointResponse
	s.decodeJSON(resp, &p)
	s.Equal(pointResponse{R: -2, I: 2, Label: "-2.000+2.000i"}, p)

	resp = s.get("/point?u=0.5&v=0.5&remin=0&remax=2&immin=0&immax=2")
	s.decodeJSON(resp, &p)
	s.Equal("1.000+1.000i", p.Label)

	resp = s.get("/point?u=0.5")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestPointOrbit() {
	// u=0.25, v=0.5 is -1, whose orbit from 0 is the 2-cycle -1, 0.
	resp := s.get("/point?u=0.25&v=0.5&orbit=3")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var p pointResponse
	s.decodeJSON(resp, &p)
	s.Equal("-1.000+0.000i", p.Label)
	s.Equal([]orbitPoint{{R: -1, I: 0}, {R: 0, I: 0}, {R: -1, I: 0}}, p.Orbit)

	for _, query := range []string{"orbit=-1", "orbit=100001", "orbit=x", "orbit=2&exponent=33"} {
		s.Run(query, func() {
			resp := s.get("/point?u=0.25&v=0.5&" + query)
			s.Equal(http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func (s *ServerSuite) TestPalette() {
	resp := s.get("/palette")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var p paletteResponse
	s.decodeJSON(resp, &p)
	s.Equal(paletteResponse{
		Outside:         "#000000",
		Inside:          "#8ef7f7",
		OutsideInverted: "#ffffff",
		InsideInverted:  "#710808",
	}, p)

	resp = s.get("/palette?inside=nope")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestMetrics() {
	s.get("/render?width=2&height=2")

	resp := s.get("/metrics")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), `multibrot_renders_total{mode="mandelbrot",outcome="ok"} 1`)
	s.Contains(string(body), "multibrot_pixels_rendered_total 4")
}

func (s *ServerSuite) dial() (*websocket.Conn, context.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	s.T().Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(s.http.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.CloseNow() })

	return conn, ctx
}

func (s *ServerSuite) TestWebsocketSession() {
	conn, ctx := s.dial()

	s.Require().NoError(wsjson.Write(ctx, conn, RenderRequest{Mode: "julia", Re: ptr(-0.8), Im: ptr(0.156), Width: 10, Height: 6}))

	var meta Rendered
	s.Require().NoError(wsjson.Read(ctx, conn, &meta))
	s.Equal(Rendered{Mode: "julia", Width: 10, Height: 6, C: "-0.800+0.156i", Background: "#000000"}, meta)

	typ, data, err := conn.Read(ctx)
	s.Require().NoError(err)
	s.Equal(websocket.MessageBinary, typ)

	img, err := png.Decode(bytes.NewReader(data))
	s.Require().NoError(err)
	s.Equal(10, img.Bounds().Dx())
	s.Equal(6, img.Bounds().Dy())

	s.Require().NoError(conn.Close(websocket.StatusNormalClosure, ""))
}

func (s *ServerSuite) TestWebsocketReportsBadRequests() {
	conn, ctx := s.dial()

	s.Require().NoError(conn.Write(ctx, websocket.MessageText, []byte("{not json")))

	var e errorResponse
	s.Require().NoError(wsjson.Read(ctx, conn, &e))
	s.NotEmpty(e.Error)

	s.Require().NoError(wsjson.Write(ctx, conn, RenderRequest{Mode: "julia"}))
	s.Require().NoError(wsjson.Read(ctx, conn, &e))
	s.Contains(e.Error, "julia mode needs")

	// The session survives bad requests.
	s.Require().NoError(wsjson.Write(ctx, conn, RenderRequest{Width: 4, Height: 4}))

	var meta Rendered
	s.Require().NoError(wsjson.Read(ctx, conn, &meta))
	s.Equal("mandelbrot", meta.Mode)
}

func (s *ServerSuite) TestWebsocketLatestRequestWins() {
	conn, ctx := s.dial()

	// The first request is large enough to still be running when the second arrives;
	// whichever way the race goes, the last answer must describe the second request.
	s.Require().NoError(wsjson.Write(ctx, conn, RenderRequest{Width: 64, Height: 64, Iterations: 100000}))
	s.Require().NoError(wsjson.Write(ctx, conn, RenderRequest{Mode: "julia", U: ptr(0.5), V: ptr(0.5), Width: 3, Height: 2}))

	for {
		var meta Rendered
		s.Require().NoError(wsjson.Read(ctx, conn, &meta))

		_, _, err := conn.Read(ctx)
		s.Require().NoError(err)

		if meta.Mode == "julia" {
			s.Equal(3, meta.Width)
			s.Equal("0.000+0.000i", meta.C)
			return
		}
	}
}

func (s *ServerSuite) TestWebsocketErrorsNeverSplitAnImage() {
	conn, ctx := s.dial()

	const bad = 20
	for range bad {
		s.Require().NoError(wsjson.Write(ctx, conn, RenderRequest{Width: 32, Height: 32, Iterations: 500}))
		s.Require().NoError(conn.Write(ctx, websocket.MessageBinary, []byte{0}))
	}
	s.Require().NoError(wsjson.Write(ctx, conn, RenderRequest{Mode: "julia", Re: ptr(0), Im: ptr(0), Width: 3, Height: 2}))

	errorFrames := 0
	for {
		typ, data, err := conn.Read(ctx)
		s.Require().NoError(err)
		s.Require().Equal(websocket.MessageText, typ, "image frame without a Rendered frame before it")

		var frame map[string]any
		s.Require().NoError(json.Unmarshal(data, &frame))
		if _, ok := frame["error"]; ok {
			errorFrames++
			continue
		}

		typ, _, err = conn.Read(ctx)
		s.Require().NoError(err)
		s.Require().Equal(websocket.MessageBinary, typ, "Rendered frame not followed by its image")

		if frame["mode"] == "julia" {
			// Every bad frame was answered before the last request was read.
			s.Equal(bad, errorFrames)
			return
		}
	}
}

func ptr(f float64) *float64 {
	return &f
}
