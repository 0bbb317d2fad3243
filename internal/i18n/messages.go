package i18n

var english = map[string]string{
	"validation.failed": "Validation failed",

	"order.not_found":          "Order %v not found",
	"order.product_not_found":  "Product %v not found or not available",
	"order.insufficient_stock": "Insufficient stock for %s (product %d): %d more unit(s) needed",
	"order.status_terminal":    "Order is already %s and its status can no longer change",
	"order.forbidden":          "You are not allowed to view this order",
	"order.update_forbidden":   "You can only update orders for your own store items",
	"order.delete_forbidden":   "Only administrators can delete orders",
	"order.list_forbidden":     "Only administrators can list all orders",
	"order.create_failed":      "Failed to create order",
	"order.update_failed":      "Failed to update order status",
	"order.delete_failed":      "Failed to delete order",
	"order.read_failed":        "Failed to load orders",
	"order.stats_failed":       "Failed to load order statistics",
	"order.seller_only":        "Only sellers can view store orders",
	"order.guest_email":        "Guest orders require an email address",
	"order.quantity_too_large": "At most 10000 units of one product can be ordered at once",
	"order.number_taken":       "Order number %q is already in use",
	"order.concurrent_update":  "Order %v was changed by another request, please retry",

	"catalog.read_failed": "Failed to load catalog",
	"product.not_found":   "Product %v not found",
	"product.forbidden":   "You can only manage products of your own stores",
	"product.slug_taken":  "A product named %q already exists in this store",
	"product.save_failed": "Failed to save product",

	"category.not_found":        "Category %v not found",
	"category.name_taken":       "A category named %q already exists",
	"category.parent_not_found": "Parent category %v not found",
	"category.self_parent":      "A category cannot be its own parent",
	"category.in_use":           "Category is still used by products or subcategories",
	"category.save_failed":      "Failed to save category",

	"store.not_found":   "Store %v not found",
	"store.forbidden":   "You can only manage your own stores",
	"store.seller_only": "Only sellers can create stores",
	"store.slug_taken":  "A store named %q already exists",
	"store.save_failed": "Failed to save store",

	"auth.email_taken":         "Email is already registered",
	"auth.invalid_credentials": "Invalid email or password",
	"auth.inactive":            "Account is deactivated",
	"auth.token_missing":       "Authentication token is missing",
	"auth.token_invalid":       "Authentication token is invalid or expired",
	"auth.admin_self_register": "Administrator accounts cannot be self-registered",
	"auth.failed":              "Authentication failed",
	"auth.role_required":       "Your role does not allow this action",
	"auth.wrong_password":      "Current password is incorrect",
	"stats.failed":             "Failed to load statistics",

	"upload.missing_file": "No file uploaded",
	"upload.too_large":    "File exceeds the %d byte limit",
	"upload.bad_type":     "Only jpeg, png, gif and webp images are allowed",
	"upload.not_found":    "File %v not found",
	"upload.failed":       "Failed to store file",

	"request.invalid_id":    "Invalid id %q",
	"request.invalid_body":  "Malformed request body",
	"request.rate_limited":  "Too many requests, slow down",
	"order.created":         "Order created successfully",
	"order.updated":         "Order status updated",
	"order.deleted":         "Order deleted",
	"product.created":       "Product created",
	"product.deleted":       "Product deleted",
	"category.created":      "Category created",
	"category.deleted":      "Category deleted",
	"store.created":         "Store created",
	"store.deleted":         "Store deleted",
	"upload.stored":         "Image uploaded",
	"upload.deleted":        "Image deleted",
	"auth.registered":       "Account created",
	"auth.logged_in":        "Logged in",
	"auth.profile_updated":  "Profile updated",
	"auth.password_changed": "Password changed",
	"health.unhealthy":      "Service unhealthy",

	"route.not_found": "Route not found",
	"internal.error":  "Internal server error",
}

var arabic = map[string]string{
	"validation.failed": "فشل التحقق من البيانات",

	"order.not_found":          "الطلب %v غير موجود",
	"order.product_not_found":  "المنتج %v غير موجود أو غير متاح",
	"order.insufficient_stock": "المخزون غير كافٍ للمنتج %s (%d): مطلوب %d وحدة إضافية",
	"order.status_terminal":    "الطلب في حالة %s ولا يمكن تغيير حالته",
	"order.forbidden":          "غير مسموح لك بعرض هذا الطلب",
	"order.update_forbidden":   "يمكنك تحديث الطلبات الخاصة بمنتجات متجرك فقط",
	"order.delete_forbidden":   "حذف الطلبات متاح للمسؤولين فقط",
	"order.list_forbidden":     "عرض جميع الطلبات متاح للمسؤولين فقط",
	"order.create_failed":      "فشل إنشاء الطلب",
	"order.update_failed":      "فشل تحديث حالة الطلب",
	"order.delete_failed":      "فشل حذف الطلب",
	"order.read_failed":        "فشل تحميل الطلبات",
	"order.stats_failed":       "فشل تحميل إحصائيات الطلبات",
	"order.seller_only":        "عرض طلبات المتجر متاح للبائعين فقط",
	"order.guest_email":        "طلبات الزوار تتطلب بريدًا إلكترونيًا",
	"order.quantity_too_large": "لا يمكن طلب أكثر من 10000 وحدة من المنتج نفسه في طلب واحد",
	"order.number_taken":       "رقم الطلب %q مستخدم بالفعل",
	"order.concurrent_update":  "تم تعديل الطلب %v بواسطة طلب آخر، حاول مرة أخرى",

	"catalog.read_failed": "فشل تحميل الكتالوج",
	"product.not_found":   "المنتج %v غير موجود",
	"product.forbidden":   "يمكنك إدارة منتجات متاجرك فقط",
	"product.slug_taken":  "يوجد منتج باسم %q في هذا المتجر",
	"product.save_failed": "فشل حفظ المنتج",

	"category.not_found":        "التصنيف %v غير موجود",
	"category.name_taken":       "يوجد تصنيف باسم %q",
	"category.parent_not_found": "التصنيف الأب %v غير موجود",
	"category.self_parent":      "لا يمكن أن يكون التصنيف أبًا لنفسه",
	"category.in_use":           "التصنيف مستخدم في منتجات أو تصنيفات فرعية",
	"category.save_failed":      "فشل حفظ التصنيف",

	"store.not_found":   "المتجر %v غير موجود",
	"store.forbidden":   "يمكنك إدارة متاجرك فقط",
	"store.seller_only": "إنشاء المتاجر متاح للبائعين فقط",
	"store.slug_taken":  "يوجد متجر باسم %q",
	"store.save_failed": "فشل حفظ المتجر",

	"auth.email_taken":         "البريد الإلكتروني مسجل بالفعل",
	"auth.invalid_credentials": "البريد الإلكتروني أو كلمة المرور غير صحيحة",
	"auth.inactive":            "الحساب معطل",
	"auth.token_missing":       "رمز المصادقة مفقود",
	"auth.token_invalid":       "رمز المصادقة غير صالح أو منتهي",
	"auth.admin_self_register": "لا يمكن تسجيل حساب مسؤول ذاتيًا",
	"auth.failed":              "فشلت المصادقة",
	"auth.role_required":       "دورك لا يسمح بهذا الإجراء",
	"auth.wrong_password":      "كلمة المرور الحالية غير صحيحة",
	"stats.failed":             "فشل تحميل الإحصائيات",

	"upload.missing_file": "لم يتم رفع أي ملف",
	"upload.too_large":    "حجم الملف يتجاوز %d بايت",
	"upload.bad_type":     "يسمح فقط بصور jpeg و png و gif و webp",
	"upload.not_found":    "الملف %v غير موجود",
	"upload.failed":       "فشل حفظ الملف",

	"request.invalid_id":    "المعرف %q غير صالح",
	"request.invalid_body":  "صيغة الطلب غير صحيحة",
	"request.rate_limited":  "طلبات كثيرة جدًا، حاول لاحقًا",
	"order.created":         "تم إنشاء الطلب بنجاح",
	"order.updated":         "تم تحديث حالة الطلب",
	"order.deleted":         "تم حذف الطلب",
	"product.created":       "تم إنشاء المنتج",
	"product.deleted":       "تم حذف المنتج",
	"category.created":      "تم إنشاء التصنيف",
	"category.deleted":      "تم حذف التصنيف",
	"store.created":         "تم إنشاء المتجر",
	"store.deleted":         "تم حذف المتجر",
	"upload.stored":         "تم رفع الصورة",
	"upload.deleted":        "تم حذف الصورة",
	"auth.registered":       "تم إنشاء الحساب",
	"auth.logged_in":        "تم تسجيل الدخول",
	"auth.profile_updated":  "تم تحديث الملف الشخصي",
	"auth.password_changed": "تم تغيير كلمة المرور",
	"health.unhealthy":      "الخدمة غير متاحة",

	"route.not_found": "المسار غير موجود",
	"internal.error":  "خطأ داخلي في الخادم",
}
