package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/actionsum/workwatch/internal/config"
	"github.com/actionsum/workwatch/internal/database"
	"github.com/actionsum/workwatch/internal/errlog"
	"github.com/actionsum/workwatch/internal/logwriter"
	"github.com/actionsum/workwatch/internal/tracker"
	"github.com/actionsum/workwatch/internal/web"
	"github.com/actionsum/workwatch/pkg/detector"
	"github.com/actionsum/workwatch/pkg/window"
)

// pipeline owns everything one tracking run needs. Console and daemon mode
// both go through it.
type pipeline struct {
	engine   *tracker.Engine
	detector window.Detector
	db       *database.DB
	web      *web.Server
}

func openPipeline(cfg *config.Config) (*pipeline, error) {
	reporter := errlog.NewFileReporter(cfg.Log.ErrorDir, cfg.Log.ErrorPrefix)

	activity := logwriter.NewCSVFile(cfg.Log.ActivityFile)
	if err := activity.Init(); err != nil {
		return nil, err
	}
	sinks := []logwriter.Sink{activity}

	p := &pipeline{}
	var repo *database.Repository

	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database.Path)
		if err == nil {
			err = db.Initialize()
			if err != nil {
				db.Close()
			}
		}
		if err != nil {
			// The CSV log is primary; run without the mirror.
			log.Printf("Database mirror disabled: %v", err)
			reporter.Report(err)
		} else {
			p.db = db
			repo = database.NewRepository(db)
			sinks = append(sinks, logwriter.StoreSink{Store: repo})
			reporter.Mirror = repo
		}
	}

	det, err := detector.New()
	if err != nil {
		p.close()
		return nil, err
	}
	p.detector = det
	log.Printf("Window detector initialized: %s", det.DisplayServer())

	p.engine = tracker.NewEngine(cfg, det, reporter, sinks...)

	if cfg.Web.Enabled {
		if repo == nil {
			log.Println("Web API disabled: it needs the database mirror")
		} else {
			p.web = web.NewServer(cfg, repo, p.engine, 0)
		}
	}

	log.Printf("Writing sessions to %s", activity.Path())
	return p, nil
}

// run blocks until ctx is canceled or the sampler fails, then stops the
// engine, which drains the queue within the grace period.
func (p *pipeline) run(ctx context.Context) error {
	if err := p.engine.Start(ctx); err != nil {
		return err
	}

	if p.web != nil {
		go func() {
			if err := p.web.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Web server error: %v", err)
			}
		}()
		log.Printf("Web API available at: http://%s", p.web.GetAddress())
	}

	select {
	case <-ctx.Done():
		log.Println("Received shutdown signal")
	case <-p.engine.Done():
	}

	if p.web != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.web.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down web server: %v", err)
		}
		cancel()
	}

	return p.engine.Stop()
}

func (p *pipeline) close() {
	if p.detector != nil {
		p.detector.Close()
	}
	if p.db != nil {
		p.db.Close()
	}
}
