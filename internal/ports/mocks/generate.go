//go:generate mockgen -source=../product_repository.go -destination=./mock_product_repository.go -package=mocks
//go:generate mockgen -source=../validator.go          -destination=./mock_validator.go          -package=mocks
//go:generate mockgen -source=../payment_gateway.go    -destination=./mock_payment_gateway.go    -package=mocks
//go:generate mockgen -source=../shipping_gateway.go   -destination=./mock_shipping_gateway.go   -package=mocks
//go:generate mockgen -source=../product_service.go    -destination=./mock_product_service.go    -package=mocks
//go:generate mockgen -source=../checkout_service.go   -destination=./mock_checkout_service.go   -package=mocks
//go:generate mockgen -source=../order_repository.go   -destination=./mock_order_repository.go   -package=mocks
//go:generate mockgen -source=../order_service.go      -destination=./mock_order_service.go      -package=mocks

package mocks
