package sfvalid

import (
	"fmt"
	"sort"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	"golang.org/x/exp/maps"
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type CalibrationTableEntry struct {
	TableName string  `db:"TableName"`
	NAxes     int     `db:"NAxes"`
	Fallback  float64 `db:"Fallback"`
}

// CalibrationRow is one cell of a binned table. Unused axes have zero ranges.
type CalibrationRow struct {
	Variation string  `db:"Variation"`
	Flavor    int     `db:"Flavor"`
	Lo1       float64 `db:"Lo1"`
	Hi1       float64 `db:"Hi1"`
	Lo2       float64 `db:"Lo2"`
	Hi2       float64 `db:"Hi2"`
	Lo3       float64 `db:"Lo3"`
	Hi3       float64 `db:"Hi3"`
	Value     float64 `db:"Value"`
}

func (r CalibrationRow) bounds(axis int) (float64, float64) {
	switch axis {
	case 0:
		return r.Lo1, r.Hi1
	case 1:
		return r.Lo2, r.Hi2
	default:
		return r.Lo3, r.Hi3
	}
}

type LumiRangeEntry struct {
	Run       uint32 `db:"Run"`
	FirstLumi uint32 `db:"FirstLumi"`
	LastLumi  uint32 `db:"LastLumi"`
}

// LoadCalibrations reads every table of a campaign.
func LoadCalibrations(db *sqlx.DB, campaign string, verbosity int) (*Calibrations, error) {
	query := "SELECT TableName, NAxes, Fallback FROM CalibrationTables WHERE Campaign = ?"
	if verbosity > 0 {
		message := fmt.Sprintf("Reading calibration tables for campaign %s", campaign)
		logger.Info(message, "database")
	}
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	entries := []CalibrationTableEntry{}
	if err := db.Select(&entries, query, campaign); err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	tables := make(map[string]*GridTable, len(entries))
	for _, entry := range entries {
		rows, err := getCalibrationRows(db, campaign, entry.TableName, verbosity)
		if err != nil {
			return nil, err
		}
		spec, err := buildTableSpec(entry, rows)
		if err != nil {
			return nil, err
		}
		table, err := NewGridTable(spec)
		if err != nil {
			return nil, err
		}
		tables[entry.TableName] = table
	}
	return NewCalibrations(tables)
}

func getCalibrationRows(db *sqlx.DB, campaign string, table string, verbosity int) ([]CalibrationRow, error) {
	query := "SELECT Variation, Flavor, Lo1, Hi1, Lo2, Hi2, Lo3, Hi3, Value FROM CalibrationBins WHERE Campaign = ? AND TableName = ?"
	if verbosity > 1 {
		message := fmt.Sprintf("Reading %s bins from database", table)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query, campaign, table)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	result := make([]CalibrationRow, 0)
	for rows.Next() {
		row := CalibrationRow{}
		err := rows.StructScan(&row)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// buildTableSpec turns table cells into grids: the edges of every axis are the
// distinct bin boundaries, cells not present in the database get the fallback.
func buildTableSpec(entry CalibrationTableEntry, rows []CalibrationRow) (TableSpec, error) {
	if entry.NAxes < 1 || entry.NAxes > 3 {
		return TableSpec{}, fmt.Errorf("table %s: unsupported number of axes %d", entry.TableName, entry.NAxes)
	}
	axes := []string{"x1", "x2", "x3"}[:entry.NAxes]

	groups := make(map[gridKey][]CalibrationRow)
	for _, r := range rows {
		key := gridKey{r.Variation, r.Flavor}
		groups[key] = append(groups[key], r)
	}
	keys := maps.Keys(groups)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].variation != keys[j].variation {
			return keys[i].variation < keys[j].variation
		}
		return keys[i].flavor < keys[j].flavor
	})

	spec := TableSpec{Name: entry.TableName, Axes: axes, Fallback: entry.Fallback}
	for _, key := range keys {
		cells := groups[key]
		edges := make([][]float64, entry.NAxes)
		for k := range edges {
			seen := make(map[float64]bool)
			for _, c := range cells {
				lo, hi := c.bounds(k)
				seen[lo] = true
				seen[hi] = true
			}
			edges[k] = maps.Keys(seen)
			sort.Float64s(edges[k])
		}

		size := 1
		for _, e := range edges {
			size *= len(e) - 1
		}
		values := make([]float64, size)
		for i := range values {
			values[i] = entry.Fallback
		}
		for _, c := range cells {
			index := 0
			for k, e := range edges {
				lo, _ := c.bounds(k)
				index = index*(len(e)-1) + sort.SearchFloat64s(e, lo)
			}
			values[index] = c.Value
		}
		spec.Grids = append(spec.Grids, GridSpec{
			Variation: key.variation,
			Flavor:    key.flavor,
			Edges:     edges,
			Values:    values,
		})
	}
	return spec, nil
}

func LoadLumiMaskFromDB(db *sqlx.DB, campaign string, verbosity int) (*RunLumiMask, error) {
	query := "SELECT Run, FirstLumi, LastLumi FROM LumiMask WHERE Campaign = ? ORDER BY Run, FirstLumi"
	if verbosity > 0 {
		logger.Info("Lumi mask read from DB", "database")
	}
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query, campaign)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	ranges := make(map[uint32][][2]uint32)
	for rows.Next() {
		result := LumiRangeEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		ranges[result.Run] = append(ranges[result.Run], [2]uint32{result.FirstLumi, result.LastLumi})
	}
	return NewRunLumiMask(ranges), rows.Err()
}
