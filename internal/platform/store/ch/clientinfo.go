package ch

import (
	"os"
	"runtime"
	"strings"

	"swifthub/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo tags connections with the build and role so rows in
// system.query_log can be traced back to a session host
func BuildClientInfo(role string) clickhouse.ClientInfo {
	bi := version.Info()
	host, _ := os.Hostname()
	type kv = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []kv{
		{Name: "swifthub", Version: bi.Version},
		{Name: "role", Version: strings.TrimSpace(role)},
		{Name: "commit", Version: short(bi.Commit)},
		{Name: "go", Version: runtime.Version()},
		{Name: "host", Version: host},
	}}
}

func short(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
