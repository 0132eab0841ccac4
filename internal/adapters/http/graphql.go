package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services. The
// schema is read-only; mutations stay on the REST surface.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocationSample",
		Fields: graphql.Fields{
			"lat":         &graphql.Field{Type: graphql.Float},
			"lon":         &graphql.Field{Type: graphql.Float},
			"alt":         &graphql.Field{Type: graphql.Float},
			"captured_at": &graphql.Field{Type: graphql.String},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeofenceZone",
		Fields: graphql.Fields{
			"name":          &graphql.Field{Type: graphql.String},
			"center":        &graphql.Field{Type: geoPointType},
			"radius_meters": &graphql.Field{Type: graphql.Float},
			"kind":          &graphql.Field{Type: graphql.String},
		},
	})

	offenderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Offender",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"id_number":        &graphql.Field{Type: graphql.String},
			"crime_type":       &graphql.Field{Type: graphql.String},
			"risk_level":       &graphql.Field{Type: graphql.String},
			"case_officer":     &graphql.Field{Type: graphql.String},
			"device_id":        &graphql.Field{Type: graphql.String},
			"current_location": &graphql.Field{Type: locationType},
			"geofence_zones":   &graphql.Field{Type: graphql.NewList(zoneType)},
		},
	})

	deviceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Device",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"device_type":   &graphql.Field{Type: graphql.String},
			"case_id":       &graphql.Field{Type: graphql.String},
			"offender_id":   &graphql.Field{Type: graphql.String},
			"status":        &graphql.Field{Type: graphql.String},
			"battery_level": &graphql.Field{Type: graphql.Int},
			"last_location": &graphql.Field{Type: locationType},
		},
	})

	poiType := graphql.NewObject(graphql.ObjectConfig{
		Name: "POI",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"address":       &graphql.Field{Type: graphql.String},
			"center":        &graphql.Field{Type: geoPointType},
			"radius_meters": &graphql.Field{Type: graphql.Float},
			"category":      &graphql.Field{Type: graphql.String},
			"active":        &graphql.Field{Type: graphql.Boolean},
		},
	})

	alertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Alert",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"offender_id":  &graphql.Field{Type: graphql.String},
			"kind":         &graphql.Field{Type: graphql.String},
			"severity":     &graphql.Field{Type: graphql.String},
			"message":      &graphql.Field{Type: graphql.String},
			"acknowledged": &graphql.Field{Type: graphql.Boolean},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DashboardStats",
		Fields: graphql.Fields{
			"total_offenders":       &graphql.Field{Type: graphql.Int},
			"total_devices":         &graphql.Field{Type: graphql.Int},
			"active_devices":        &graphql.Field{Type: graphql.Int},
			"unacknowledged_alerts": &graphql.Field{Type: graphql.Int},
			"total_pois":            &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"offenders": &graphql.Field{
				Type:        graphql.NewList(offenderType),
				Description: "List all monitored offenders",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Offenders.List(p.Context)
				},
			},
			"offender": &graphql.Field{
				Type:        offenderType,
				Description: "Get an offender by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Offenders.GetByID(p.Context, id)
				},
			},
			"devices": &graphql.Field{
				Type:        graphql.NewList(deviceType),
				Description: "List all tracking devices",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Devices.List(p.Context)
				},
			},
			"device": &graphql.Field{
				Type:        deviceType,
				Description: "Get a device by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Devices.GetByID(p.Context, id)
				},
			},
			"pois": &graphql.Field{
				Type:        graphql.NewList(poiType),
				Description: "List points of interest",
				Args: graphql.FieldConfigArgument{
					"active": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if active, _ := p.Args["active"].(bool); active {
						return deps.POIs.ListActive(p.Context)
					}
					return deps.POIs.List(p.Context)
				},
			},
			"alerts": &graphql.Field{
				Type:        graphql.NewList(alertType),
				Description: "Alert log, newest first",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Alerts.List(p.Context)
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Dashboard overview statistics",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Stats.Dashboard(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
