package main

import "courtbook/internal/app"

// @title Court Booking API
// @version 1.0
// @description Сервис бронирования теннисного корта: регистрация с подтверждением по email, бронирование слотов, отчёты для администратора.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
