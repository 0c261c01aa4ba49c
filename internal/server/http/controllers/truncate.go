package controllers

import "encoding/json"

// truncateLogsResp trims the Data array until the serialized response fits
// the byte budget. Scalar fields are never dropped; trimming marks the
// response truncated so clients know pagination state refers to the full
// page, not what survived.
func truncateLogsResp(resp *logsResp, maxBytes int) {
	if maxBytes <= 0 {
		return
	}
	size := encodedSize(resp)
	if size <= maxBytes {
		return
	}
	resp.Truncated = true
	// drop from the tail; the front of the page is what the cursor promised
	for len(resp.Data) > 0 && size > maxBytes {
		size -= encodedSize(resp.Data[len(resp.Data)-1])
		resp.Data = resp.Data[:len(resp.Data)-1]
	}
}

func encodedSize(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(b)
}
