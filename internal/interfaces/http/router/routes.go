package router

import (
	"github.com/erp/backoffice/internal/application/records"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/organization"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Dependencies are what the API routes are built from
type Dependencies struct {
	Records       *records.Services
	Importer      handler.PartnerImporter
	Authenticator handler.Authenticator
	Permissions   middleware.PermissionChecker
	Workbook      handler.WorkbookWriter
	Metrics       handler.MutationRecorder
	MaxUpload     int64
	Logger        *zap.Logger
}

// APIRoutes returns the registrars of every /api/v1 route
func APIRoutes(d Dependencies) []RouteRegistrar {
	svc := d.Records
	return []RouteRegistrar{
		handler.NewAuthHandler(d.Authenticator),
		handler.NewPartnerImportHandler(d.Importer, d.Metrics, d.MaxUpload,
			middleware.RequirePermission(d.Permissions, partnerResource, auth.ActionImport, d.Logger)),
		recordRoutes[partner.Partner](d, svc.Partners),
		recordRoutes[trade.Cotation](d, svc.Cotations),
		recordRoutes[trade.Tender](d, svc.Tenders),
		recordRoutes[catalog.Offering](d, svc.Offerings),
		recordRoutes[organization.Member](d, svc.Members),
		recordRoutes[organization.Office](d, svc.Offices),
		recordRoutes[identity.Visitor](d, svc.Visitors),
	}
}

const partnerResource = "partners"

func recordRoutes[T any](d Dependencies, svc handler.RecordService[T]) RouteRegistrar {
	return handler.NewRecordHandler(svc, d.Workbook, d.Metrics,
		middleware.RequireResource(d.Permissions, svc.Entity(), d.Logger))
}
