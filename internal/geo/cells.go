package geo

import (
	"fmt"
	"sort"

	"github.com/uber/h3-go/v4"

	"nrw-report-service/internal/model"
)

const (
	DefaultResolution = 9
	maxResolution     = 15
)

// Cluster is one hexagonal map cell of the dashboard view.
type Cluster struct {
	Cell       string      `json:"cell"`
	Center     Coordinates `json:"center"`
	Total      int         `json:"total"`
	Unresolved int         `json:"unresolved"`
	ReportIDs  []string    `json:"report_ids"`
}

// ClusterReports groups located reports by H3 cell. Reports without
// coordinates are skipped. Clusters come back busiest first, ties broken by
// cell id, and report ids keep the input order.
func ClusterReports(reports []model.Report, resolution int) ([]Cluster, error) {
	if resolution < 0 || resolution > maxResolution {
		return nil, fmt.Errorf("resolution must be between 0 and %d", maxResolution)
	}

	byCell := make(map[h3.Cell]*Cluster)
	order := make([]h3.Cell, 0)
	for _, r := range reports {
		if !r.HasLocation() {
			continue
		}
		cell := h3.LatLngToCell(h3.NewLatLng(*r.Latitude, *r.Longitude), resolution)
		cluster, ok := byCell[cell]
		if !ok {
			center := cell.LatLng()
			cluster = &Cluster{
				Cell:   cell.String(),
				Center: Coordinates{Latitude: center.Lat, Longitude: center.Lng},
			}
			byCell[cell] = cluster
			order = append(order, cell)
		}
		cluster.Total++
		if !r.Resolved {
			cluster.Unresolved++
		}
		cluster.ReportIDs = append(cluster.ReportIDs, r.ID.String())
	}

	clusters := make([]Cluster, 0, len(order))
	for _, cell := range order {
		clusters = append(clusters, *byCell[cell])
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Total != clusters[j].Total {
			return clusters[i].Total > clusters[j].Total
		}
		return clusters[i].Cell < clusters[j].Cell
	})
	return clusters, nil
}
