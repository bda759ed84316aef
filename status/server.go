// Package status serves the transport manager state over HTTP for housekeeping and monitoring.
package status

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/rate"
	"github.com/ugparu/kahawai/transport"
	"github.com/ugparu/kahawai/utils"
	"github.com/ugparu/kahawai/utils/logger"
)

// Snapshotter is the read side of transport.Manager.
type Snapshotter interface {
	Snapshot() transport.Snapshot
}

// Server is the status HTTP server.
type Server struct {
	server    *http.Server
	router    *gin.Engine
	source    Snapshotter
	startOnce *sync.Once
	closeOnce *sync.Once
	deadChan  chan struct{}
}

// New builds a server for addr reporting source and the metrics in gatherer.
func New(addr string, source Snapshotter, gatherer prometheus.Gatherer) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	pprof.Register(router)

	s := &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		router:    router,
		source:    source,
		startOnce: &sync.Once{},
		closeOnce: &sync.Once{},
		deadChan:  make(chan struct{}),
	}

	router.GET("/status", s.getStatus)
	router.GET("/rates", getRates)
	router.GET("/classify", getClassify)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	logger.Debug(s, "Initialized and set up")
	return s
}

func (s *Server) String() string {
	return "STATUS " + s.server.Addr
}

// Handler returns the router, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Close. It blocks.
func (s *Server) Start() {
	err := errors.New("status server has been started already")
	s.startOnce.Do(func() {
		defer close(s.deadChan)

		logger.Info(s, "Starting listening")
		if err = s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warning(s, err.Error())
		}
		err = nil
	})
	if err != nil {
		logger.Error(s, err.Error())
	}
}

// Close stops the server.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		logger.Info(s, "Stopping and closing")
		if err := s.server.Close(); err != nil {
			logger.Warning(s, err.Error())
		}
	})
}

// Dead is closed once Start returns.
func (s *Server) Dead() <-chan struct{} {
	return s.deadChan
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Snapshot())
}

type bandResponse struct {
	FPS   string `json:"fps"`
	Lower int64  `json:"lower"`
	Upper int64  `json:"upper"`
}

func getRates(c *gin.Context) {
	bands := rate.Bands()
	resp := make([]bandResponse, 0, len(bands))
	for _, b := range bands {
		resp = append(resp, bandResponse{FPS: b.Target.String(), Lower: b.Lower, Upper: b.Upper})
	}
	c.JSON(http.StatusOK, resp)
}

type classifyResponse struct {
	Rate       string `json:"rate"`
	FPS        string `json:"fps"`
	Hundredths int64  `json:"hundredths"`
	Err        string `json:"err,omitempty"`
}

func getClassify(c *gin.Context) {
	r, err := kahawai.ParseRational(c.Query("rate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, classifyResponse{Rate: c.Query("rate"), FPS: kahawai.FPSUnsupported.String(), Err: err.Error()})
		return
	}

	resp := classifyResponse{Rate: r.String()}
	fps, err := rate.Classify(r)
	resp.FPS = fps.String()
	if err != nil {
		resp.Err = err.Error()
		var unsupported *utils.UnsupportedRateError
		if !errors.As(err, &unsupported) {
			c.JSON(http.StatusBadRequest, resp)
			return
		}
		resp.Hundredths = unsupported.Hundredths
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	if resp.Hundredths, err = rate.Hundredths(r); err != nil {
		resp.Err = err.Error()
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
