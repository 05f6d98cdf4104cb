package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// coordinatePairs turns points into plain [lng, lat] lists for graphql-go,
// whose list resolver only walks slices.
func coordinatePairs(points []domain.Coordinate) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = []float64{p.Lon(), p.Lat()}
	}
	return out
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinatesField := func(get func(src any) []domain.Coordinate) *graphql.Field {
		return &graphql.Field{
			Type:        graphql.NewList(graphql.NewList(graphql.Float)),
			Description: "[lng, lat] pairs",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return coordinatePairs(get(p.Source)), nil
			},
		}
	}

	rideType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Ride",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"polyline":    &graphql.Field{Type: graphql.String},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
			"coordinates": coordinatesField(func(src any) []domain.Coordinate {
				return src.(domain.Ride).Coordinates
			}),
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AvoidZone",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
			"coordinates": coordinatesField(func(src any) []domain.Coordinate {
				return src.(domain.AvoidZone).Coordinates
			}),
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stats",
		Fields: graphql.Fields{
			"total_rides": &graphql.Field{Type: graphql.Int},
			"total_km":    &graphql.Field{Type: graphql.Float},
			"total_zones": &graphql.Field{Type: graphql.Int},
		},
	})

	boundaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Boundary",
		Fields: graphql.Fields{
			"display_name": &graphql.Field{Type: graphql.String},
			"geometry": &graphql.Field{
				Type:        graphql.String,
				Description: "GeoJSON geometry of the outline",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return geojsonString(p.Source.(BoundaryResponse).Geometry)
				},
			},
			"mask": &graphql.Field{
				Type:        graphql.String,
				Description: "GeoJSON polygon covering the world outside the outline",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return geojsonString(p.Source.(BoundaryResponse).Mask)
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"rides": &graphql.Field{
				Type:        graphql.NewList(rideType),
				Description: "List saved rides",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Shapes.ListRides(p.Context)
				},
			},
			"ride": &graphql.Field{
				Type:        rideType,
				Description: "Get a ride by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ride, err := deps.Shapes.GetRide(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return *ride, nil
				},
			},
			"avoidZones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "List saved avoid zones",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Shapes.ListZones(p.Context)
				},
			},
			"stats": &graphql.Field{
				Type:        statsType,
				Description: "Totals over everything saved",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Stats.Summary(p.Context)
				},
			},
			"boundary": &graphql.Field{
				Type:        boundaryType,
				Description: "Administrative boundary of a place and its inverted mask",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b, err := deps.Geo.FetchBoundary(p.Context, p.Args["query"].(string))
					if err != nil {
						return nil, err
					}
					return newBoundaryResponse(b), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func geojsonString(g *geojson.Geometry) (interface{}, error) {
	if g == nil {
		return nil, nil
	}
	data, err := g.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
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
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
