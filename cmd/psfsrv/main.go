package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"golang.org/x/time/rate"
	yml "gopkg.in/yaml.v2"

	"github.com/nasa-jpl/gopsf/psf"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "psfsrv.yml"
	k              = koanf.New(".")
)

// Config holds the server initialization parameters.
type Config struct {
	// Addr is the address to listen at
	Addr string `yaml:"Addr" koanf:"Addr"`

	// DataDir holds the Zernike field calibration tables
	DataDir string `yaml:"DataDir" koanf:"DataDir"`

	// PupilDir holds the pupil mask FITS files; empty means DataDir
	PupilDir string `yaml:"PupilDir" koanf:"PupilDir"`

	// RateLimit caps PSF builds per second; 0 disables limiting
	RateLimit float64 `yaml:"RateLimit" koanf:"RateLimit"`

	// Burst is the rate limiter burst size
	Burst int `yaml:"Burst" koanf:"Burst"`
}

func setupconfig() {
	k.Load(structs.Provider(Config{
		Addr:    ":8000",
		DataDir: "data",
		Burst:   4}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `psfsrv synthesizes optical PSF models for the wide-field camera and
exposes them over HTTP for image simulation pipelines.

Usage:
	psfsrv <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `psfsrv is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

DataDir must contain the per-detector Zernike field calibration tables
(wfc_zernike_field_NN.txt) and, unless PupilDir points elsewhere, the two
pupil mask FITS files.

Routes:
- POST /psf          build a PSF model (JSON request/response)
- GET  /bandpasses   list the instrument filters
- GET  /aberrations  interpolated Zernike vector for ?detector=&x=&y=
- GET  /endpoints    list of routes

Aperture construction is cached for the life of the process, so the first
request at a new (pupil, binning, wavelength, parameters) combination is
slow and later ones are cheap.  RateLimit protects the server from a
client storm of distinct slow requests.`
	fmt.Println(str)
}

func mkconf() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := Config{}
	k.Unmarshal("", &c)
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("psfsrv version %v\n", Version)
}

// ratelimit rejects requests beyond the limiter's sustained rate with 429.
func ratelimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				http.Error(w, "request rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func run() {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	builder := psf.NewBuilder(c.DataDir)
	builder.PupilDir = c.PupilDir

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	if c.RateLimit > 0 {
		r.Use(ratelimit(rate.NewLimiter(rate.Limit(c.RateLimit), c.Burst)))
	}
	psf.NewHTTPWrapper(builder).Bind(r)
	r.Get("/endpoints", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `["/psf","/bandpasses","/aberrations","/endpoints"]`)
	})

	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, r))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
