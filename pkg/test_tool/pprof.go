package testtool

import (
	"net/http"
	_ "net/http/pprof" // 匯入後會自動註冊 pprof endpoint

	"media_delivery_service/pkg/config"
	"media_delivery_service/pkg/logger"

	"go.uber.org/zap"
)

// PprofAddr 只聽本機
const PprofAddr = "127.0.0.1:6060"

// StartPprof 非 production 環境才啟動 pprof 監控伺服器
func StartPprof() {
	if config.IsProduction() {
		logger.Log.Info("production environment detected, pprof is disabled")
		return
	}

	go func() {
		logger.Log.Info("starting pprof server", zap.String("addr", PprofAddr))
		if err := http.ListenAndServe(PprofAddr, nil); err != nil {
			logger.Log.Warn("pprof server stopped", zap.Error(err))
		}
	}()
}

// 常用分析:
// 	curl http://127.0.0.1:6060/debug/pprof/
// 	go tool pprof http://127.0.0.1:6060/debug/pprof/heap
// 	go tool pprof http://127.0.0.1:6060/debug/pprof/profile?seconds=30
// 大檔下載時 heap 應維持在 chunk_size 等級, goroutine 數量隨連線數增減.
