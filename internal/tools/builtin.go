package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/service"
)

const searchFoodsLimit = 20

type orderSummary struct {
	ID           uuid.UUID         `json:"id"`
	CustomerName string            `json:"customer_name"`
	Status       model.OrderStatus `json:"status"`
	Items        int               `json:"items"`
	Total        float64           `json:"total"`
}

type foodSummary struct {
	ID       uint           `json:"id"`
	Name     string         `json:"name"`
	Location model.Location `json:"location"`
	Date     string         `json:"date"`
	MealType model.MealType `json:"meal_type"`
	Calories *int           `json:"calories"`
	Protein  *float64       `json:"protein"`
}

type searchOrdersArgs struct {
	Status string `json:"status"`
}

type orderArgs struct {
	OrderID string `json:"order_id"`
}

type searchFoodsArgs struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

type dailyTotalsArgs struct {
	ProfileID string `json:"profile_id"`
	Date      string `json:"date"`
}

// Builtin returns the assistant's standard tools over the given services.
func Builtin(orders service.IOrderService, foods service.IFoodService, tracker service.ITrackerService) []Tool {
	locations := make([]string, len(model.AllLocations))
	for i, loc := range model.AllLocations {
		locations[i] = string(loc)
	}

	return []Tool{
		NewTool("search_orders", "List orders, optionally only those with the given status.",
			Object(nil, map[string]*Schema{
				"status": String("order status", string(model.OrderPending), string(model.OrderConfirmed), string(model.OrderCancelled)),
			}),
			func(ctx context.Context, in searchOrdersArgs) ([]orderSummary, error) {
				list, err := orders.List(ctx, model.OrderStatus(in.Status))
				if err != nil {
					return nil, err
				}
				out := make([]orderSummary, 0, len(list))
				for i := range list {
					o := &list[i]
					out = append(out, orderSummary{ID: o.ID, CustomerName: o.CustomerName, Status: o.Status, Items: len(o.Items), Total: o.Total()})
				}
				return out, nil
			}),

		NewTool("get_order_details", "Get one order with its items, price total and nutrition totals.",
			Object([]string{"order_id"}, map[string]*Schema{"order_id": String("order UUID")}),
			func(ctx context.Context, in orderArgs) (*service.OrderDetails, error) {
				id, err := parseID(in.OrderID, "order_id")
				if err != nil {
					return nil, err
				}
				return orders.Get(ctx, id)
			}),

		NewTool("confirm_order", "Confirm a pending order.",
			Object([]string{"order_id"}, map[string]*Schema{"order_id": String("order UUID")}),
			func(ctx context.Context, in orderArgs) (*model.Order, error) {
				id, err := parseID(in.OrderID, "order_id")
				if err != nil {
					return nil, err
				}
				return orders.Confirm(ctx, id)
			}),

		NewTool("search_foods", "Search menu items by name, optionally at one location and date.",
			Object([]string{"query"}, map[string]*Schema{
				"query":    String("part of the item name"),
				"location": String("dining hall", locations...),
				"date":     String("menu date, YYYY-MM-DD"),
			}),
			func(ctx context.Context, in searchFoodsArgs) ([]foodSummary, error) {
				filter := service.FoodFilter{Date: in.Date, Limit: searchFoodsLimit}
				if in.Location != "" {
					loc, err := model.ParseLocation(in.Location)
					if err != nil {
						return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
					}
					filter.Location = loc
				}
				items, err := foods.Search(ctx, in.Query, filter)
				if err != nil {
					return nil, err
				}
				out := make([]foodSummary, 0, len(items))
				for _, f := range items {
					out = append(out, foodSummary{
						ID: f.ID, Name: f.Name, Location: f.Location, Date: f.MenuDate,
						MealType: f.MealType, Calories: f.Calories, Protein: f.Protein,
					})
				}
				return out, nil
			}),

		NewTool("get_daily_totals", "Sum the nutrition a profile logged on a date.",
			Object([]string{"profile_id", "date"}, map[string]*Schema{
				"profile_id": String("profile UUID"),
				"date":       String("YYYY-MM-DD"),
			}),
			func(ctx context.Context, in dailyTotalsArgs) (model.NutritionTotals, error) {
				id, err := parseID(in.ProfileID, "profile_id")
				if err != nil {
					return model.NutritionTotals{}, err
				}
				return tracker.DailyTotals(ctx, id, in.Date)
			}),
	}
}

// NewDefaultRegistry builds and validates the registry of built-in tools.
func NewDefaultRegistry(orders service.IOrderService, foods service.IFoodService, tracker service.ITrackerService) (*Registry, error) {
	return NewRegistry(Builtin(orders, foods, tracker)...)
}

func parseID(s, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a UUID", ErrInvalidArguments, field)
	}
	return id, nil
}
