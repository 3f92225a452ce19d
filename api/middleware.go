package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kestrel-uas/kestrel/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// logRequest rolls the logging output over to the current day's file and records the request.
// This runs for all requests.
func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		SetLoggingFile(log)
		log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("Request received")

		next.ServeHTTP(w, r)
	})
}

// recovery converts panics in handlers into a 500 response instead of tearing down the server.
func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("Recovered from panic in %v %v: %v", r.Method, r.URL.Path, rec)
				handleError(fmt.Errorf("%v", rec), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

//
// Rate Limiter
//

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	lst map[string]time.Time // last event time for each ip
	mu  *sync.RWMutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		lst: make(map[string]time.Time),
		mu:  &sync.RWMutex{},
		r:   r,
		b:   b,
	}

	return i
}

// AddIP creates a new rate limiter and adds it to the ips map,
// using the IP address as the key
func (i *IPRateLimiter) AddIP(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter := rate.NewLimiter(i.r, i.b)

	i.ips[ip] = limiter

	return limiter
}

// CleanUpIPs will delete any rate limiters belonging to IPs that haven't been seen in over a minute
func (i *IPRateLimiter) CleanUpIPs() {
	for {
		time.Sleep(time.Minute)
		i.mu.Lock()
		for ip, t := range i.lst {
			if time.Since(t) > 1*time.Minute {
				delete(i.ips, ip)
				delete(i.lst, ip)
			}
		}
		i.mu.Unlock()
	}
}

// GetLimiter returns the rate limiter for the provided IP address if it exists.
// Otherwise, calls AddIP to add IP address to the map
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	limiter, exists := i.ips[ip]

	i.lst[ip] = time.Now()

	if !exists {
		i.mu.Unlock()
		return i.AddIP(ip)
	}

	i.mu.Unlock()

	return limiter
}

// There is one rate limiter object shared by all API instances for simplicity. No individual IP address is allowed
// to make more than 100 requests per second or 500 requests in a burst
var limiter = NewIPRateLimiter(100, 500)

// rateLimit middleware checks the rate of requests for each IP seen and returns 429 if the rate limit is exceeded
func rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := limiter.GetLimiter(strings.Split(r.RemoteAddr, ":")[0])
		if !limiter.Allow() {
			log.Warn("Client at ", strings.Split(r.RemoteAddr, ":")[0], " has made too many requests. Request rate is being limited.")

			var err model.TooManyRequestsError
			handleError(&err, w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
