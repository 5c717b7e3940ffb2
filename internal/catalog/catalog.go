// Package catalog declares the iBis data model: recorded tracks and their
// points, users, routing profiles, way types and the static and dynamic
// edge costs scoped to them.
package catalog

import (
	"github.com/tordrt/ibisdb/internal/schema"
)

// Table names
const (
	Tracks                   = "tracks"
	TrackPoints              = "track_points"
	Users                    = "users"
	Profiles                 = "profiles"
	ProfileDescription       = "profile_description"
	WayTypes                 = "way_types"
	WayTypeDescription       = "way_type_description"
	CostStatic               = "cost_static"
	CostDynamic              = "cost_dynamic"
	CostDynamicPrecalculated = "cost_dynamic_precalculated"
)

// Declaration is the declared schema plus a by-name view of its tables.
// Metadata is the container handed to a dialect or migrator; Tables points
// into Metadata.Tables.
type Declaration struct {
	Metadata *schema.Schema
	Tables   map[string]*schema.Table
}

// Declare builds the iBis schema. Every call returns a fresh, identical
// declaration.
func Declare() *Declaration {
	s := &schema.Schema{Tables: []schema.Table{
		tracks(),
		trackPoints(),
		users(),
		profiles(),
		profileDescription(),
		wayTypes(),
		wayTypeDescription(),
		costStatic(),
		costDynamic(),
		costDynamicPrecalculated(),
	}}

	d := &Declaration{
		Metadata: s,
		Tables:   make(map[string]*schema.Table, len(s.Tables)),
	}
	for i := range s.Tables {
		d.Tables[s.Tables[i].Name] = &s.Tables[i]
	}
	return d
}

// Names returns the declared table names in creation order.
func (d *Declaration) Names() []string {
	return d.Metadata.Names()
}

var (
	length   = schema.Numeric(16, 8)
	accuracy = schema.Numeric(11, 8)
	cost     = schema.Numeric(16, 8)
)

func col(name, typ string) schema.Column {
	return schema.Column{Name: name, Type: typ, Nullable: true}
}

func required(name, typ string) schema.Column {
	return schema.Column{Name: name, Type: typ}
}

func geometry(name, geomType string, srid int, nullable bool) schema.Column {
	return schema.Column{
		Name:     name,
		Type:     schema.TypeGeometry,
		Nullable: nullable,
		Geometry: &schema.Geometry{Type: geomType, SRID: srid},
	}
}

func references(column, table, target, onDelete string) schema.Relation {
	return schema.Relation{
		SourceColumn: column,
		TargetTable:  table,
		TargetColumn: target,
		Cardinality:  "N:1",
		OnDelete:     onDelete,
	}
}

func index(table string, columns ...string) schema.Index {
	name := "ix_" + table
	for _, c := range columns {
		name += "_" + c
	}
	return schema.Index{Name: name, Columns: columns}
}

func spatialIndex(table, column string) schema.Index {
	idx := index(table, column)
	idx.Method = schema.MethodGiST
	return idx
}

func tracks() schema.Table {
	dataHash := col("data_hash", schema.TypeText)
	dataHash.IsUnique = true

	return schema.Table{
		Name:       Tracks,
		PrimaryKey: []string{"id"},
		Columns: []schema.Column{
			required("id", schema.TypeBigSerial),
			required("created", schema.TypeTimestamp),
			required("uploaded", schema.TypeTimestamp),
			required("length", length),
			required("duration", schema.TypeBigInt),
			required("num_points", schema.TypeBigInt),
			required("public", schema.TypeBoolean),
			col("name", schema.TypeText),
			col("comment", schema.TypeText),
			col("city", schema.TypeText),
			dataHash,
			geometry("extension_geom", schema.GeometryPolygon, 0, true),
			geometry("track", schema.GeometryLineString, 0, true),
		},
		Indexes: []schema.Index{
			spatialIndex(Tracks, "extension_geom"),
			spatialIndex(Tracks, "track"),
		},
	}
}

func trackPoints() schema.Table {
	return schema.Table{
		Name: TrackPoints,
		Columns: []schema.Column{
			required("id", schema.TypeBigInt),
			geometry("geom", schema.GeometryPoint, schema.SRIDWGS84, false),
			col("altitude", length),
			col("accuracy", accuracy),
			required("time", schema.TypeTimestamp),
			col("velocity", accuracy),
			col("shock", length),
		},
		Relations: []schema.Relation{
			references("id", Tracks, "id", schema.Cascade),
		},
		Indexes: []schema.Index{
			index(TrackPoints, "id"),
			spatialIndex(TrackPoints, "geom"),
		},
	}
}

func users() schema.Table {
	name := index(Users, "name")
	name.IsUnique = true

	return schema.Table{
		Name: Users,
		Columns: []schema.Column{
			col("name", schema.TypeText),
			col("password", schema.TypeText),
			col("rights", schema.TypeBigInt),
			col("enabled", schema.TypeBoolean),
		},
		Indexes: []schema.Index{name},
	}
}

func profiles() schema.Table {
	return schema.Table{
		Name:       Profiles,
		PrimaryKey: []string{"id"},
		Columns: []schema.Column{
			required("id", schema.TypeBigSerial),
			col("name", schema.TypeText),
		},
	}
}

func profileDescription() schema.Table {
	id := col("id", schema.TypeBigInt)
	id.IsUnique = true

	rel := references("id", Profiles, "id", "")
	rel.Cardinality = "1:1"

	return schema.Table{
		Name: ProfileDescription,
		Columns: []schema.Column{
			id,
			col("language", schema.TypeText),
			col("description", schema.TypeText),
		},
		Relations: []schema.Relation{rel},
	}
}

func wayTypes() schema.Table {
	return schema.Table{
		Name:       WayTypes,
		PrimaryKey: []string{"id"},
		Columns: []schema.Column{
			required("id", schema.TypeText),
		},
	}
}

func wayTypeDescription() schema.Table {
	return schema.Table{
		Name: WayTypeDescription,
		Columns: []schema.Column{
			col("id", schema.TypeText),
			col("language", schema.TypeText),
			col("description", schema.TypeText),
		},
		Relations: []schema.Relation{
			references("id", WayTypes, "id", ""),
		},
		Indexes: []schema.Index{
			index(WayTypeDescription, "id"),
		},
	}
}

func costStatic() schema.Table {
	return schema.Table{
		Name: CostStatic,
		Columns: []schema.Column{
			col("id", schema.TypeText),
			col("cost_forward", cost),
			col("cost_reverse", cost),
			col("profile", schema.TypeBigInt),
		},
		Relations: []schema.Relation{
			references("id", WayTypes, "id", ""),
			references("profile", Profiles, "id", ""),
		},
		Indexes: []schema.Index{
			{Name: "idx_id_profile", Columns: []string{"id", "profile"}, IsUnique: true},
		},
	}
}

func costDynamic() schema.Table {
	return schema.Table{
		Name: CostDynamic,
		Columns: []schema.Column{
			col("segment_id", schema.TypeBigInt),
			col("track_id", schema.TypeBigInt),
			col("cost_forward", cost),
			col("cost_reverse", cost),
		},
		Relations: []schema.Relation{
			references("track_id", Tracks, "id", ""),
		},
		Indexes: []schema.Index{
			index(CostDynamic, "segment_id"),
		},
	}
}

func costDynamicPrecalculated() schema.Table {
	return schema.Table{
		Name:       CostDynamicPrecalculated,
		PrimaryKey: []string{"segment_id"},
		Columns: []schema.Column{
			// segment ids come from the routing graph, never generated here
			required("segment_id", schema.TypeBigInt),
			col("cost_forward", cost),
			col("cost_reverse", cost),
			col("relevance", cost),
		},
	}
}
