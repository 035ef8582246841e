// Package httpapi exposes the Gateway's CRUD surface for tenants,
// products, orders, labels, quick replies, and tickets, plus the
// /v1/jobs submit/poll endpoints used to track one AI processing request.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/tokowa/commerce-agent/internal/apperr"
	"github.com/tokowa/commerce-agent/internal/bus"
	"github.com/tokowa/commerce-agent/internal/jobs"
	"github.com/tokowa/commerce-agent/internal/repository"
)

// Server bundles the repositories and collaborators the CRUD and job
// endpoints depend on.
type Server struct {
	validate *validator.Validate
	limiter  *rate.Limiter

	tenants      *repository.TenantRepo
	products     *repository.ProductRepo
	orders       *repository.OrderRepo
	labels       *repository.LabelRepo
	quickReplies *repository.QuickReplyRepo
	tickets      *repository.TicketRepo

	jobStore  *jobs.Store
	publisher *bus.Publisher
	taskQueue string
}

// NewServer builds a Server over its repositories and job-submission collaborators.
func NewServer(
	tenants *repository.TenantRepo,
	products *repository.ProductRepo,
	orders *repository.OrderRepo,
	labels *repository.LabelRepo,
	quickReplies *repository.QuickReplyRepo,
	tickets *repository.TicketRepo,
	jobStore *jobs.Store,
	publisher *bus.Publisher,
	taskQueue string,
) *Server {
	return &Server{
		validate:     validator.New(),
		limiter:      rate.NewLimiter(rate.Limit(1000), 50),
		tenants:      tenants,
		products:     products,
		orders:       orders,
		labels:       labels,
		quickReplies: quickReplies,
		tickets:      tickets,
		jobStore:     jobStore,
		publisher:    publisher,
		taskQueue:    taskQueue,
	}
}

// RegisterRoutes wires every CRUD and job endpoint onto r under /v1.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.Use(apperr.Middleware())

	tenantsGroup := v1.Group("/tenants")
	tenantsGroup.GET("", s.ListTenants)
	tenantsGroup.POST("", s.CreateTenant)
	tenantsGroup.GET("/:id", s.GetTenant)
	tenantsGroup.PUT("/:id", s.UpdateTenant)

	productsGroup := v1.Group("/tenants/:tenant_id/products")
	productsGroup.GET("", s.SearchProducts)
	productsGroup.POST("", s.CreateProduct)
	productsGroup.GET("/:id", s.GetProduct)
	productsGroup.PUT("/:id", s.UpdateProduct)
	productsGroup.DELETE("/:id", s.DeleteProduct)

	ordersGroup := v1.Group("/tenants/:tenant_id/orders")
	ordersGroup.GET("/:id", s.GetOrder)
	ordersGroup.GET("/customers/:customer_id", s.ListCustomerOrders)

	labelsGroup := v1.Group("/tenants/:tenant_id/labels")
	labelsGroup.GET("", s.ListLabels)

	quickRepliesGroup := v1.Group("/tenants/:tenant_id/quick-replies")
	quickRepliesGroup.GET("", s.ListQuickReplies)
	quickRepliesGroup.POST("", s.CreateQuickReply)
	quickRepliesGroup.DELETE("/:id", s.DeleteQuickReply)

	ticketsGroup := v1.Group("/tenants/:tenant_id/tickets")
	ticketsGroup.GET("", s.ListTickets)
	ticketsGroup.GET("/:id", s.GetTicket)

	jobsGroup := v1.Group("/jobs")
	jobsGroup.POST("", s.SubmitJob)
	jobsGroup.GET("/:id", s.GetJob)
}
