package dash

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/you/fx-signals/internal/pairs"
	"github.com/you/fx-signals/internal/quotes"
)

// Row is one instrument pair as shown on the dashboard.
type Row struct {
	Pair   string  `json:"pair"`
	Price  float64 `json:"price"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Spread float64 `json:"spread"`

	PriceText string `json:"priceText"`

	TS int64 `json:"ts"`
}

type Store struct {
	mu   sync.RWMutex
	rows map[string]Row // key: pair
}

func NewStore() *Store { return &Store{rows: make(map[string]Row, 8)} }

// Update replaces the row for the quote's pair.
func (s *Store) Update(q quotes.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[q.Pair] = Row{
		Pair:      q.Pair,
		Price:     q.Price,
		Bid:       q.Bid,
		Ask:       q.Ask,
		Spread:    q.Spread,
		PriceText: quotes.FormatPrice(q.Price, 4),
		TS:        q.Timestamp.UnixMilli(),
	}
}

func (s *Store) List() []Row {
	s.mu.RLock()
	out := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Pair < out[j].Pair })
	return out
}

// PairSource supplies the indicator records behind /api/pairs. The redis
// consumer satisfies it; tests use a stub.
type PairSource interface {
	ReadPairRecords(ctx context.Context, sinceMs int64) ([]pairs.Record, error)
}

type screenResponse struct {
	Pairs         []pairs.Record `json:"pairs"`
	FilterSummary string         `json:"filterSummary"`
	SortSummary   string         `json:"sortSummary"`
}

// StartHTTP serves the dashboard page, the quote rows, and the pair
// screener API. src may be nil, in which case /api/pairs answers with an
// empty set.
func StartHTTP(ctx context.Context, s *Store, src PairSource, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.List())
	})
	mux.HandleFunc("/api/pairs", func(w http.ResponseWriter, r *http.Request) {
		handleScreen(w, r, src)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() { <-ctx.Done(); _ = srv.Close() }()

	log.Printf("[dash] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !strings.Contains(err.Error(), "Server closed") {
		log.Printf("[dash] http server error: %v", err)
	}
}

func handleScreen(w http.ResponseWriter, r *http.Request, src PairSource) {
	w.Header().Set("Content-Type", "application/json")
	if src == nil {
		_ = json.NewEncoder(w).Encode(screenResponse{Pairs: []pairs.Record{}})
		return
	}

	// Active window: anything the analytics side touched in the last hour.
	sinceMs := time.Now().Add(-time.Hour).UnixMilli()
	records, err := src.ReadPairRecords(r.Context(), sinceMs)
	if err != nil {
		http.Error(w, `{"error":"pair source unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	criteria, opts := parseScreenQuery(r)
	criteria = pairs.ValidateFilters(criteria)

	records = pairs.SearchPairs(records, r.URL.Query().Get("q"))
	records = pairs.FilterAndSortPairs(records, criteria, opts)

	_ = json.NewEncoder(w).Encode(screenResponse{
		Pairs:         records,
		FilterSummary: pairs.FilterSummary(criteria),
		SortSummary:   pairs.SortSummary(opts),
	})
}

func parseScreenQuery(r *http.Request) (pairs.Criteria, pairs.SortOptions) {
	q := r.URL.Query()
	criteria := pairs.DefaultCriteria()

	if min, okMin := queryF(q.Get("rsi_min")); okMin {
		criteria.RSIRange.Min = min
	}
	if max, okMax := queryF(q.Get("rsi_max")); okMax {
		criteria.RSIRange.Max = max
	}
	if min, okMin := queryF(q.Get("rfi_min")); okMin {
		criteria.RFIRange.Min = min
	}
	if max, okMax := queryF(q.Get("rfi_max")); okMax {
		criteria.RFIRange.Max = max
	}
	if v := q.Get("type"); v != "" {
		criteria.PairType = pairs.PairType(v)
	}
	if v := q.Get("signal"); v != "" {
		criteria.Signal = pairs.Signal(v)
	}
	if v := q.Get("volume"); v != "" {
		criteria.Volume = pairs.VolumeTier(v)
	}

	opts := pairs.DefaultSort()
	if v := q.Get("sort"); v != "" {
		opts.By = pairs.SortKey(v)
	}
	if v := q.Get("order"); v == string(pairs.OrderAsc) {
		opts.Order = pairs.OrderAsc
	}
	return criteria, opts
}

func queryF(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>FX Quotes</title>
  <style>
    :root { --bg:#f8fafc; --card:#fff; --muted:#6b7280; --chip:#e5e7eb; }
    body{margin:0;background:var(--bg);font:14px/1.4 ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Ubuntu; color:#111827;}
    .wrap{max-width:880px;margin:24px auto;padding:0 16px;}
    .hdr{display:flex;align-items:flex-end;justify-content:space-between;margin-bottom:12px;}
    .state{font-size:12px;padding:2px 8px;border-radius:999px;background:#d1fae5;color:#065f46;}
    table{width:100%;border-collapse:collapse;background:var(--card);border-radius:16px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,.06);}
    thead{background:#f3f4f6;} th,td{padding:12px 14px;text-align:left;} tbody tr{border-top:1px solid #f3f4f6;}
    .chip{display:inline-block;font-size:12px;padding:2px 8px;background:var(--chip);border-radius:999px;color:#374151;}
    .sub{color:var(--muted);font-size:12px;margin:0;}
  </style>
</head>
<body>
<div class="wrap">
  <div class="hdr">
    <div>
      <h1 style="margin:0;font-size:22px;font-weight:600">FX Quotes</h1>
      <p class="sub">Live forex quotes with synthetic bid/ask spread</p>
    </div>
    <div id="state" class="state">live</div>
  </div>
  <table>
    <thead>
      <tr>
        <th>Pair</th><th>Price</th><th>Bid</th><th>Ask</th><th>Spread</th>
        <th style="text-align:right">Updated</th>
      </tr>
    </thead>
    <tbody id="rows"></tbody>
  </table>
  <p class="sub" style="margin-top:8px">Spread is synthetic: one basis point either side of the reference price.</p>
</div>
<script>
  function px(x){ return (x==null||isNaN(x)) ? '—' : Number(x).toFixed(4); }
  function rowHTML(r){
    return '<tr>'
      + '<td><strong>' + (r.pair||'') + '</strong></td>'
      + '<td>' + (r.priceText||px(r.price)) + '</td>'
      + '<td>' + px(r.bid) + '</td>'
      + '<td>' + px(r.ask) + '</td>'
      + '<td><span class="chip">' + px(r.spread) + '</span></td>'
      + '<td style="text-align:right;color:#6B7280;font-size:12px">' + new Date(r.ts||Date.now()).toLocaleTimeString() + '</td>'
      + '</tr>';
  }
  async function tick(){
    try{
      var res = await fetch('/api/quotes', {cache:'no-store'});
      if(!res.ok) throw new Error('status '+res.status);
      var data = await res.json();
      document.getElementById('state').textContent = 'live';
      document.getElementById('rows').innerHTML = data.map(rowHTML).join('');
    }catch(e){
      document.getElementById('state').textContent = 'stale';
    }
  }
  tick(); setInterval(tick, 2000);
</script>
</body>
</html>`
