/*
 * Copyright 2026 AeroLink Systems Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mission

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aerolink/dronehub/pkg/models"
)

// wplHeader is the QGC WPL version line the firmware side expects verbatim.
const wplHeader = "QGC WPL 110"

// Each waypoint line carries exactly these tab-separated fields, in order:
// index, current, frame, command, param1..param4, latitude, longitude,
// altitude, autocontinue.
const wplFieldCount = 12

var (
	ErrEmptyPlan     = errors.New("flight plan has no waypoints")
	errMissingHeader = errors.New("missing QGC WPL header")
)

// EncodeWPL renders an ordered flight plan in the QGC WPL 110 file format.
// Waypoint order is preserved; the first line is marked current.
func EncodeWPL(waypoints []models.Waypoint) (string, error) {
	if len(waypoints) == 0 {
		return "", ErrEmptyPlan
	}

	var b strings.Builder

	b.WriteString(wplHeader)
	b.WriteByte('\n')

	for i, wp := range waypoints {
		current := 0
		if i == 0 {
			current = 1
		}

		fields := []string{
			strconv.Itoa(i),
			strconv.Itoa(current),
			strconv.Itoa(wp.Frame),
			strconv.Itoa(wp.Command),
			formatFloat(wp.Param1),
			formatFloat(wp.Param2),
			formatFloat(wp.Param3),
			formatFloat(wp.Param4),
			formatFloat(wp.Latitude),
			formatFloat(wp.Longitude),
			formatFloat(wp.Altitude),
			"1",
		}

		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// ParseWPL decodes a QGC WPL 110 document back into an ordered flight plan.
func ParseWPL(doc string) ([]models.Waypoint, error) {
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != wplHeader {
		return nil, errMissingHeader
	}

	waypoints := make([]models.Waypoint, 0, len(lines)-1)

	for n, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != wplFieldCount {
			return nil, fmt.Errorf("waypoint line %d: expected %d fields, got %d", n+1, wplFieldCount, len(fields))
		}

		wp, err := parseWaypointLine(fields)
		if err != nil {
			return nil, fmt.Errorf("waypoint line %d: %w", n+1, err)
		}

		waypoints = append(waypoints, wp)
	}

	if len(waypoints) == 0 {
		return nil, ErrEmptyPlan
	}

	return waypoints, nil
}

func parseWaypointLine(fields []string) (models.Waypoint, error) {
	var wp models.Waypoint

	seq, err := strconv.Atoi(fields[0])
	if err != nil {
		return wp, fmt.Errorf("bad index %q: %w", fields[0], err)
	}

	frame, err := strconv.Atoi(fields[2])
	if err != nil {
		return wp, fmt.Errorf("bad frame %q: %w", fields[2], err)
	}

	command, err := strconv.Atoi(fields[3])
	if err != nil {
		return wp, fmt.Errorf("bad command %q: %w", fields[3], err)
	}

	floats := make([]float64, 7)

	for i, raw := range fields[4:11] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return wp, fmt.Errorf("bad numeric field %q: %w", raw, err)
		}

		floats[i] = v
	}

	wp = models.Waypoint{
		Sequence:  seq,
		Frame:     frame,
		Command:   command,
		Param1:    floats[0],
		Param2:    floats[1],
		Param3:    floats[2],
		Param4:    floats[3],
		Latitude:  floats[4],
		Longitude: floats[5],
		Altitude:  floats[6],
	}

	return wp, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
