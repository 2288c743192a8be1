// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// logHeader names the fields of each row Hub.Debug appends.
var logHeader = []string{"millis", "tick", "bodies", "pairs", "manifolds", "contacts", "physics"}

// AppendLog appends fields as a CSV row to filename. header is written first if the file is empty.
func AppendLog(filename string, header []string, fields []interface{}) (err error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}

	w := csv.NewWriter(f)

	if info.Size() == 0 && len(header) > 0 {
		if err = w.Write(header); err != nil {
			return
		}
	}

	fieldStrings := make([]string, 0, len(fields))

	for _, field := range fields {
		var fieldString string

		switch v := field.(type) {
		case float32, float64:
			fieldString = fmt.Sprintf("%.2f", v)
		case time.Duration:
			fieldString = fmt.Sprintf("%.3f", v.Seconds()*1000)
		default:
			fieldString = fmt.Sprint(v)
		}

		fieldStrings = append(fieldStrings, fieldString)
	}

	if err = w.Write(fieldStrings); err != nil {
		return
	}

	w.Flush()
	// Error from flush
	err = w.Error()
	return
}
