/*
Package server implements msgpack IPC for frequency ranking.

Clients write a stream of msgpack maps to the server's input and read one
msgpack map back per request. The first value the server writes is

	{"status": "ready"}

Every request carries an id, echoed in the response, and an action:

	{"id": "1", "action": "observe", "items": ["wcag143", "wcag111", "wcag143"]}
	{"id": "2", "action": "top", "k": 2}
	{"id": "3", "action": "top", "p": "wcag14", "k": 5}
	{"id": "4", "action": "drain", "k": 3}
	{"id": "5", "action": "count", "item": "wcag143"}
	{"id": "6", "action": "stats"}
	{"id": "7", "action": "reset"}
	{"id": "8", "action": "health"}

top and drain answer with the ranked items, most frequent first, and the time
taken in microseconds:

	{"id": "2", "s": [{"w": "wcag143", "c": 2, "r": 1}, {"w": "wcag111", "c": 1, "r": 2}], "c": 2, "t": 12}

top leaves the counts alone; drain removes the items it returns. A missing k
means rank.top_k from the config, and k is clamped to rank.max_k.

Failures answer with an error message and a code, 400 for bad requests and
500 when ranking itself failed:

	{"id": "9", "e": "Unknown action: frobnicate", "c": 400}
*/
package server

// Request is any client message. Fields unused by the action are ignored.
type Request struct {
	ID     string   `msgpack:"id"`
	Action string   `msgpack:"action"`
	Items  []string `msgpack:"items,omitempty"`
	Item   string   `msgpack:"item,omitempty"`
	Prefix string   `msgpack:"p,omitempty"`
	K      int      `msgpack:"k,omitempty"`
}

// RankedItem is one entry of a TopResponse.
type RankedItem struct {
	Word  string `msgpack:"w"`
	Count int    `msgpack:"c"`
	Rank  uint16 `msgpack:"r"`
}

// TopResponse answers top and drain.
type TopResponse struct {
	ID        string       `msgpack:"id"`
	Items     []RankedItem `msgpack:"s"`
	Count     int          `msgpack:"c"`
	TimeTaken int64        `msgpack:"t"`
}

// ObserveResponse answers observe.
type ObserveResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"status"`
	Observed int    `msgpack:"observed"`
	Distinct int    `msgpack:"distinct"`
}

// CountResponse answers count.
type CountResponse struct {
	ID    string `msgpack:"id"`
	Item  string `msgpack:"item"`
	Count int    `msgpack:"count"`
}

// StatsResponse answers stats.
type StatsResponse struct {
	ID string `msgpack:"id"`
	Stats
}

// Stats is a snapshot of the server state.
type Stats struct {
	Distinct     int    `msgpack:"distinct"`
	Observations int    `msgpack:"observations"`
	Backend      string `msgpack:"backend"`
	Requests     int    `msgpack:"requests"`
	CacheHits    int    `msgpack:"cache_hits"`
}

// StatusResponse answers health and reset, and is the ready signal.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
