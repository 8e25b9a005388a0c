package api

import (
	"sort"
	"time"

	"marionettist/internal/domain"
)

// MethodConfigurationDTO is the wire form of one method's behaviour state.
type MethodConfigurationDTO struct {
	MethodName          string   `json:"methodName"`
	DefaultBehaviour    string   `json:"defaultBehaviour"`
	CurrentBehaviour    string   `json:"currentBehaviour"`
	AvailableBehaviours []string `json:"availableBehaviours"`
}

// ClassConfigurationDTO groups the methods of one instrumented class.
type ClassConfigurationDTO struct {
	ClassName string                   `json:"className"`
	Methods   []MethodConfigurationDTO `json:"methods"`
}

// ServiceConfigurationDTO is the full read model of one registered service.
type ServiceConfigurationDTO struct {
	ServiceName string                  `json:"serviceName"`
	Status      string                  `json:"status"`
	Endpoint    string                  `json:"endpoint,omitempty"`
	LastSeen    time.Time               `json:"lastSeen"`
	Modified    bool                    `json:"modified"`
	Classes     []ClassConfigurationDTO `json:"classes"`
}

// ConfigurationsResponse is the body of GET /api/configurations.
type ConfigurationsResponse struct {
	Services      []ServiceConfigurationDTO `json:"services"`
	ServiceCount  int                       `json:"serviceCount"`
	LastDiscovery time.Time                 `json:"lastDiscovery"`
}

// BehaviourChangeRequest is the body of POST /api/behaviour.
type BehaviourChangeRequest struct {
	ServiceName string `json:"serviceName" binding:"required"`
	ClassName   string `json:"className" binding:"required"`
	MethodName  string `json:"methodName" binding:"required"`
	BehaviourID string `json:"behaviourId" binding:"required"`
}

// ErrorResponse carries an explicit failure result back to the caller.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message}
}

func buildConfigurationsResponse(registry *domain.ConfigRegistry) ConfigurationsResponse {
	configs := registry.AllRuntimeConfigurations()
	metadata := registry.AllServiceMetadata()

	services := make([]ServiceConfigurationDTO, 0, len(configs))
	for name, cfg := range configs {
		dto := ServiceConfigurationDTO{
			ServiceName: name.String(),
			Modified:    registry.IsServiceModified(name),
			Classes:     buildClassDTOs(cfg),
		}
		if meta, ok := metadata[name]; ok {
			dto.Status = string(meta.Status())
			dto.LastSeen = meta.LastSeen()
			if meta.Endpoint() != nil {
				dto.Endpoint = meta.Endpoint().String()
			}
		}
		services = append(services, dto)
	}
	sort.Slice(services, func(i, j int) bool {
		return services[i].ServiceName < services[j].ServiceName
	})

	return ConfigurationsResponse{
		Services:      services,
		ServiceCount:  len(services),
		LastDiscovery: registry.LastDiscovery(),
	}
}

func buildClassDTOs(cfg domain.ServiceConfig) []ClassConfigurationDTO {
	classes := make([]ClassConfigurationDTO, 0, len(cfg.ClassConfigs()))
	for className, classCfg := range cfg.ClassConfigs() {
		classDTO := ClassConfigurationDTO{ClassName: className.String()}
		for methodName, methodCfg := range classCfg.MethodConfigs() {
			classDTO.Methods = append(classDTO.Methods, MethodConfigurationDTO{
				MethodName:          methodName.String(),
				DefaultBehaviour:    methodCfg.DefaultBehaviourID().String(),
				CurrentBehaviour:    methodCfg.CurrentBehaviourID().String(),
				AvailableBehaviours: methodCfg.AvailableBehaviourIDs().Strings(),
			})
		}
		sort.Slice(classDTO.Methods, func(i, j int) bool {
			return classDTO.Methods[i].MethodName < classDTO.Methods[j].MethodName
		})
		classes = append(classes, classDTO)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].ClassName < classes[j].ClassName
	})
	return classes
}
