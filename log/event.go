package log

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// events are stored in siser format:
// "--- ${size} ${timestamp_in_unix_epoch_ms} ${name}\n"
// followed by ${size} bytes of data. For readability, if the data
// doesn't end with newline, we add one

var hdrPrefix = []byte("--- ")

// EventRecord is an event read back from events log
type EventRecord struct {
	Name      string
	Timestamp time.Time
	// toon-encoded key/value pairs
	Data []byte
}

func marshalEventLine(name string, t time.Time, d []byte) []byte {
	var wb bytes.Buffer
	wb.Grow(len(hdrPrefix) + len(name) + len(d) + 32)
	wb.Write(hdrPrefix)
	dataLen := len(d)
	wb.WriteString(strconv.Itoa(dataLen))
	wb.WriteString(" ")
	wb.WriteString(strconv.FormatInt(t.UnixMilli(), 10))
	if name != "" {
		wb.WriteString(" ")
		wb.WriteString(name)
	}
	wb.WriteByte('\n')
	if dataLen > 0 {
		wb.Write(d)
		if d[dataLen-1] != '\n' {
			wb.WriteByte('\n')
		}
	}
	return wb.Bytes()
}

func parseEventHeader(hdr string) (int, time.Time, string, error) {
	if !strings.HasPrefix(hdr, string(hdrPrefix)) {
		return 0, time.Time{}, "", fmt.Errorf("invalid event header: '%s'", hdr)
	}
	parts := strings.SplitN(hdr[len(hdrPrefix):], " ", 3)
	if len(parts) < 2 {
		return 0, time.Time{}, "", fmt.Errorf("invalid event header: '%s'", hdr)
	}
	size, err := strconv.Atoi(parts[0])
	if err != nil || size < 0 {
		return 0, time.Time{}, "", fmt.Errorf("invalid size in event header: '%s'", hdr)
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, "", fmt.Errorf("invalid timestamp in event header: '%s'", hdr)
	}
	name := ""
	if len(parts) > 2 {
		name = parts[2]
	}
	return size, time.UnixMilli(ms).UTC(), name, nil
}

// ReadEvents reads all events written by Event()
func ReadEvents(r io.Reader) ([]*EventRecord, error) {
	br := bufio.NewReader(r)
	var res []*EventRecord
	for {
		hdr, err := br.ReadString('\n')
		if err == io.EOF && hdr == "" {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event header: %w", err)
		}
		size, ts, name, err := parseEventHeader(strings.TrimSuffix(hdr, "\n"))
		if err != nil {
			return nil, err
		}
		rec := &EventRecord{
			Name:      name,
			Timestamp: ts,
		}
		if size > 0 {
			rec.Data = make([]byte, size)
			if _, err = io.ReadFull(br, rec.Data); err != nil {
				return nil, fmt.Errorf("failed to read event '%s' data: %w", name, err)
			}
			if rec.Data[size-1] != '\n' {
				// skip newline added for readability
				if _, err = br.ReadByte(); err != nil && err != io.EOF {
					return nil, err
				}
			}
		}
		res = append(res, rec)
	}
}
