package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"chyron-analysis/config"
	"chyron-analysis/pkg/model"
	"chyron-analysis/pkg/service"
	"chyron-analysis/pkg/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalysisAPI 在内存中的记录集上提供只读分析接口
type AnalysisAPI struct {
	svc     *service.AnalysisService
	cfg     *config.AnalysisConfig
	loc     *time.Location
	records []model.CleanedRecord
}

func NewAnalysisAPI(svc *service.AnalysisService, cfg *config.GlobalConfig, records []model.CleanedRecord) *AnalysisAPI {
	return &AnalysisAPI{
		svc:     svc,
		cfg:     cfg.AnalysisConfig,
		loc:     cfg.IngestConfig.TimeLocation(),
		records: records,
	}
}

// NewRouter 创建 gin 路由
func NewRouter(a *AnalysisAPI, debugMode bool) *gin.Engine {
	if !debugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, err any) {
			zap.S().Errorf("panic: %v\n%s", err, debug.Stack())
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
		requestLogger(),
		cors.New(cors.Config{
			AllowMethods:    []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders:    []string{"Accept", "Content-Type", "Origin", "Accept-Encoding"},
			AllowAllOrigins: true,
			MaxAge:          12 * time.Hour,
		}),
		gzip.Gzip(gzip.DefaultCompression),
	)

	r.GET("/health", a.getHealth)
	group := r.Group("/api")
	{
		group.GET("/stations", a.getStations)
		group.GET("/frequencies", a.getFrequencies)
		group.GET("/logodds", a.getLogOdds)
		group.GET("/timeline", a.getTimeline)
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"msg": "接口不存在"})
	})
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.S().Debugf("%s %s %d %s", c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start))
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
}

func (a *AnalysisAPI) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"records": len(a.records),
		"version": util.GetVersion().Version,
	})
}

func (a *AnalysisAPI) getStations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": service.Describe(a.records)})
}
