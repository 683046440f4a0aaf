package config

import "time"

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:30s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

// Backend locates the remote content and commerce API.
type Backend struct {
	URL     string        `conf:"default:http://localhost:3000/api"`
	Timeout time.Duration `conf:"default:10s"`
}

type Session struct {
	Lifetime     time.Duration `conf:"default:12h"`
	CookieName   string        `conf:"default:studio_session"`
	CookieSecure bool          `conf:"default:false"`
}

// Submit throttles wizard submissions per teacher.
type Submit struct {
	Burst    int           `conf:"default:1"`
	Interval time.Duration `conf:"default:5s"`
	Expiry   time.Duration `conf:"default:30m"`
}

type Config struct {
	Web     Web
	Cors    Cors
	Backend Backend
	Session Session
	Submit  Submit
}
